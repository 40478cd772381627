package validators

import "go.mongodb.org/mongo-driver/bson"

var AttackRecordValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"team_id",
			"period_id",
			"boss_id",
			"participant_id",
			"participant_name",
			"round",
			"attack_kind",
			"damage",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
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

			"participant_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"participant_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"round": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"attack_kind": bson.M{
				"bsonType": "string",
				"enum": []string{
					"physical",
					"magic",
					"carry",
				},
			},

			"damage": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"leftover_time": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"parent_credit_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
