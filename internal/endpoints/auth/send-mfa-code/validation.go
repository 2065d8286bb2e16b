package sendmfacode

import "partner-dashboard/internal/common/validation"

const inputSchemaJSON = `{
  "type": "object",
  "properties": {
    "userId": {
      "type": "string",
      "minLength": 1,
      "maxLength": 255,
      "description": "Id of the user the code is issued for; must match the caller"
    }
  },
  "required": ["userId"]
}`

var inputSchema = validation.MustCompileSchema(inputSchemaJSON)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
