package cognition

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const actionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"enum": ["buy", "move", "rest", "eat", "work", "chat"]},
    "target_location": {"type": ["string", "null"]},
    "target_product": {"type": ["string", "null"]},
    "target_agent": {"type": ["string", "null"]},
    "reasoning": {"type": ["string", "null"]},
    "urgency": {"type": ["string", "null"]}
  },
  "allOf": [
    {
      "if": {"properties": {"action": {"const": "buy"}}},
      "then": {
        "required": ["target_location", "target_product"],
        "properties": {
          "target_location": {"type": "string", "minLength": 1},
          "target_product": {"type": "string", "minLength": 1}
        }
      }
    },
    {
      "if": {"properties": {"action": {"const": "move"}}},
      "then": {
        "required": ["target_location"],
        "properties": {"target_location": {"type": "string", "minLength": 1}}
      }
    }
  ]
}`

const planSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["plan"],
  "properties": {
    "plan": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["time", "action"],
        "properties": {
          "time": {"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}$"},
          "action": {"type": "string"},
          "location": {"type": ["string", "null"]},
          "product": {"type": ["string", "null"]},
          "purpose": {"type": ["string", "null"]}
        }
      }
    },
    "reasoning": {"type": ["string", "null"]}
  }
}`

const conversationSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dialogue"],
  "properties": {
    "dialogue": {"type": "string"},
    "topic": {"type": ["string", "null"]},
    "relationship_change": {"type": "number"},
    "reasoning": {"type": ["string", "null"]}
  }
}`

var (
	actionSchema       = jsonschema.MustCompileString("action.schema.json", actionSchemaJSON)
	planSchema         = jsonschema.MustCompileString("plan.schema.json", planSchemaJSON)
	conversationSchema = jsonschema.MustCompileString("conversation.schema.json", conversationSchemaJSON)
)
