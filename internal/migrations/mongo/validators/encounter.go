package validators

import "go.mongodb.org/mongo-driver/bson"

var EncounterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"correlation_key",
			"team_id",
			"period_id",
			"boss_id",
			"round",
			"current_health",
			"max_health",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"correlation_key": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"team_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"period_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"boss_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"round": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"current_health": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"max_health": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
