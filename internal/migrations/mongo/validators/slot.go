package validators

import "go.mongodb.org/mongo-driver/bson"

var AdSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"creator_id",
			"type",
			"price",
			"date",
			"available",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"creator_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"story",
					"post",
					"reel",
				},
			},

			"price": bson.M{
				"bsonType":         []string{"double", "int"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"available": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
