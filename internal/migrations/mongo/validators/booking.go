package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"encounter_id",
			"team_id",
			"participant_id",
			"participant_name",
			"attack_kind",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"encounter_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"team_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
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
