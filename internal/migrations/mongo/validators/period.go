package validators

import "go.mongodb.org/mongo-driver/bson"

var PeriodValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"date_from",
			"date_to",
			"boss_ids",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"date_from": bson.M{
				"bsonType": "date",
			},

			"date_to": bson.M{
				"bsonType": "date",
			},

			"boss_ids": bson.M{
				"bsonType": "array",
				"minItems": 5,
				"maxItems": 5,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},
		},
	},
}

var BossValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"position",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"image_path": bson.M{
				"bsonType": "string",
			},

			"position": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  5,
			},
		},
	},
}

var BossHealthValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"position",
			"round_from",
			"round_to",
			"health",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"position": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  5,
			},

			"round_from": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"round_to": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"health": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},
		},
	},
}
