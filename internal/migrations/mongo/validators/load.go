package validators

import "go.mongodb.org/mongo-driver/bson"

var LoadValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"shipper_id",
			"loading_city",
			"unloading_city",
			"loading_date",
			"product_type",
			"weight",
			"weight_unit",
			"truck_type",
			"no_of_trucks",
			"status",
			"version",
			"date_posted",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"shipper_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"loading_city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"unloading_city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"loading_date": bson.M{
				"bsonType": "date",
			},

			"product_type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"weight": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"weight_unit": bson.M{
				"bsonType": "string",
				"enum":     []string{"KG", "TON"},
			},

			"truck_type": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"no_of_trucks": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"POSTED",
					"OPEN_FOR_BIDS",
					"BOOKED",
					"CANCELLED",
				},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"date_posted": bson.M{
				"bsonType": "date",
			},
		},
	},
}
