package domain

// catalog is the complete, ordered set of tools this server exposes. It is
// fixed at compile time: nothing is added, removed, or renamed at runtime.
var catalog = []Tool{
	{
		Kind: KindGetSchema,
		Name: "bubble_get_schema",
		Description: "Get the Bubble application schema: all data types with their " +
			"fields, and the API workflows that can be triggered. Call this first " +
			"to discover what the other tools can operate on.",
		InputSchema: JSONSchemaProps{
			Type: "object",
		},
	},
	{
		Kind: KindList,
		Name: "bubble_list",
		Description: "List records of a Bubble data type. Supports cursor-based " +
			"pagination via the optional limit and cursor parameters.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"dataType": {
					Type:        "string",
					Description: "Name of the data type to list, e.g. \"user\".",
				},
				"limit": {
					Type:        "number",
					Description: "Maximum number of records to return.",
				},
				"cursor": {
					Type:        "number",
					Description: "Position to start from, as returned by a previous call.",
				},
			},
			Required: []string{"dataType"},
		},
	},
	{
		Kind:        KindGet,
		Name:        "bubble_get",
		Description: "Fetch a single record of a Bubble data type by its unique id.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"dataType": {
					Type:        "string",
					Description: "Name of the data type, e.g. \"order\".",
				},
				"id": {
					Type:        "string",
					Description: "Unique id of the record.",
				},
			},
			Required: []string{"dataType", "id"},
		},
	},
	{
		Kind:        KindCreate,
		Name:        "bubble_create",
		Description: "Create a new record of a Bubble data type. Requires read-write mode.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"dataType": {
					Type:        "string",
					Description: "Name of the data type to create a record of.",
				},
				"data": {
					Type:        "object",
					Description: "Field values for the new record.",
				},
			},
			Required: []string{"dataType", "data"},
		},
	},
	{
		Kind:        KindUpdate,
		Name:        "bubble_update",
		Description: "Update fields of an existing record. Requires read-write mode.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"dataType": {
					Type:        "string",
					Description: "Name of the data type the record belongs to.",
				},
				"id": {
					Type:        "string",
					Description: "Unique id of the record to update.",
				},
				"data": {
					Type:        "object",
					Description: "Field values to change. Unlisted fields keep their value.",
				},
			},
			Required: []string{"dataType", "id", "data"},
		},
	},
	{
		Kind:        KindDelete,
		Name:        "bubble_delete",
		Description: "Delete a record by its unique id. Requires read-write mode.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"dataType": {
					Type:        "string",
					Description: "Name of the data type the record belongs to.",
				},
				"id": {
					Type:        "string",
					Description: "Unique id of the record to delete.",
				},
			},
			Required: []string{"dataType", "id"},
		},
	},
	{
		Kind: KindWorkflow,
		Name: "bubble_workflow",
		Description: "Trigger a Bubble API workflow by name, with an optional JSON " +
			"payload. Requires read-write mode.",
		InputSchema: JSONSchemaProps{
			Type: "object",
			Properties: map[string]JSONSchemaProps{
				"workflowName": {
					Type:        "string",
					Description: "Name of the API workflow to trigger, e.g. \"send-email\".",
				},
				"data": {
					Type:        "object",
					Description: "Parameters passed to the workflow. Defaults to an empty object.",
				},
			},
			Required: []string{"workflowName"},
		},
	},
}

// Catalog returns the ordered tool descriptors. The returned slice is a copy;
// callers can reorder or filter it freely.
func Catalog() []Tool {
	out := make([]Tool, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a tool descriptor by its wire name.
func Lookup(name string) (Tool, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
