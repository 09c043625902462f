package sonarqube

import "github.com/xeipuuv/gojsonschema"

// Response schemas. They only pin the shape the evaluation relies on; extra fields
// and missing optional sections are accepted.
const (
	qualityGatesSchema = `{
		"type": "object",
		"required": ["qualitygates"],
		"properties": {
			"default": {"type": ["string", "integer"]},
			"qualitygates": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": ["string", "integer"]},
						"name": {"type": "string"},
						"isDefault": {"type": "boolean"}
					}
				}
			}
		}
	}`

	qualityGateDetailsSchema = `{
		"type": "object",
		"properties": {
			"conditions": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["metric"],
					"properties": {
						"metric": {"type": "string"},
						"op": {"type": "string"},
						"error": {"type": ["string", "number"]}
					}
				}
			}
		}
	}`

	projectSchema = `{
		"type": "object",
		"properties": {
			"qualityGate": {
				"type": ["object", "null"],
				"properties": {
					"id": {"type": ["string", "integer"]},
					"key": {"type": ["string", "integer"]},
					"name": {"type": "string"}
				}
			}
		}
	}`

	qualityGateStatusSchema = `{
		"type": "object",
		"required": ["projectStatus"],
		"properties": {
			"projectStatus": {
				"type": "object",
				"required": ["status"],
				"properties": {
					"status": {"type": "string"},
					"conditions": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["status", "metricKey"],
							"properties": {
								"status": {"type": "string"},
								"metricKey": {"type": "string"},
								"comparator": {"type": "string"},
								"errorThreshold": {"type": ["string", "number"]},
								"actualValue": {"type": ["string", "number"]}
							}
						}
					}
				}
			}
		}
	}`

	metricSchema = `{
		"type": "object",
		"properties": {
			"metrics": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["key"],
					"properties": {
						"key": {"type": "string"},
						"name": {"type": "string"},
						"type": {"type": "string"}
					}
				}
			}
		}
	}`
)

var (
	qualityGatesDocSchema       = mustSchema(qualityGatesSchema)
	qualityGateDetailsDocSchema = mustSchema(qualityGateDetailsSchema)
	projectDocSchema            = mustSchema(projectSchema)
	qualityGateStatusDocSchema  = mustSchema(qualityGateStatusSchema)
	metricDocSchema             = mustSchema(metricSchema)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(err)
	}
	return schema
}
