package enricher

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/helixml/bookshelf/infrastructure/provider"
)

// Instructions is the system prompt sent ahead of every review.
const Instructions = `You are a helpful assistant for book reviews.
When a user provides a review, (1) summarize it briefly, (2) produce a few concise lowercase tags, (3) judge its sentiment, and return a single JSON payload:
{ "summary": string, "sentimentScore": number, "tags": string[] }
The sentimentScore should be a number between 0 and 1 where 0 is very negative and 1 is very positive.
Respond with the JSON object only.`

// SchemaName names the structured output schema.
const SchemaName = "review_enrichment"

// Payload is the JSON shape the model is asked to return.
type Payload struct {
	Summary        string   `json:"summary" jsonschema:"required" jsonschema_description:"One or two sentence summary of the review"`
	SentimentScore float64  `json:"sentimentScore" jsonschema:"required" jsonschema_description:"Sentiment from 0 (very negative) to 1 (very positive)"`
	Tags           []string `json:"tags" jsonschema:"required" jsonschema_description:"Three to seven concise lowercase tags"`
}

var (
	schemaOnce sync.Once
	schema     provider.ResponseSchema
)

// PayloadSchema returns the reflected JSON schema for Payload.
func PayloadSchema() provider.ResponseSchema {
	schemaOnce.Do(func() {
		schema = provider.NewResponseSchema(SchemaName, generateSchema[Payload]())
	})
	return schema
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
