package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"business_id",
			"business_name",
			"business_email",
			"creator_id",
			"creator_name",
			"slot_id",
			"slot_type",
			"date",
			"price",
			"platform_fee",
			"total",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"business_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"business_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"business_email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"creator_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"creator_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"slot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"slot_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"story",
					"post",
					"reel",
				},
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"price": bson.M{
				"bsonType":         []string{"double", "int"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"platform_fee": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"total": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"completed",
				},
			},

			"proof_url": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
