package script

import "embed"

// ScriptSchemaFS contains the embedded script JSON schema.
//
//go:embed schema/script.schema.json
var ScriptSchemaFS embed.FS

// schemaFileName is the path of the schema inside ScriptSchemaFS.
const schemaFileName = "schema/script.schema.json"
