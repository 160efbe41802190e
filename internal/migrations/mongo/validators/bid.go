package validators

import "go.mongodb.org/mongo-driver/bson"

var BidValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"load_id",
			"transporter_id",
			"proposed_rate",
			"trucks_offered",
			"status",
			"date_submitted",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"load_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"transporter_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			// Scoring divides by the rate.
			"proposed_rate": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"trucks_offered": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"ACCEPTED",
					"REJECTED",
				},
			},

			"date_submitted": bson.M{
				"bsonType": "date",
			},
		},
	},
}
