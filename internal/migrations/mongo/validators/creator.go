package validators

import "go.mongodb.org/mongo-driver/bson"

var CreatorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"name",
			"email",
			"platform",
			"city",
			"approved",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"instagram_handle": bson.M{
				"bsonType":  "string",
				"maxLength": 60,
			},

			"photo": bson.M{
				"bsonType": "string",
			},

			"platform": bson.M{
				"bsonType": "string",
				"enum": []string{
					"instagram",
					"tiktok",
					"facebook",
				},
			},

			"follower_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"engagement_rate": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  100,
			},

			"bio": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"approved": bson.M{
				"bsonType": "bool",
			},

			"story_price": bson.M{
				"bsonType":         []string{"double", "int"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"post_price": bson.M{
				"bsonType":         []string{"double", "int"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"reel_price": bson.M{
				"bsonType":         []string{"double", "int"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"blocked_dates": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
					"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
