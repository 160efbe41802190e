package validators

import "go.mongodb.org/mongo-driver/bson"

var TransporterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"company_name",
			"rating",
			"available_trucks",
			"fleet_trucks",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"company_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},

			// Truck type -> count. A count can never go negative.
			"available_trucks": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  0,
				},
			},

			"fleet_trucks": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  0,
				},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}
