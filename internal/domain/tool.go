package domain

// Kind identifies one of the fixed tools exposed by the server. The set is
// closed: the dispatcher switches exhaustively over these values instead of
// comparing tool-name strings at call time.
type Kind int

const (
	KindGetSchema Kind = iota
	KindList
	KindGet
	KindCreate
	KindUpdate
	KindDelete
	KindWorkflow
)

// String returns the wire name of the tool, as announced to MCP clients.
func (k Kind) String() string {
	switch k {
	case KindGetSchema:
		return "bubble_get_schema"
	case KindList:
		return "bubble_list"
	case KindGet:
		return "bubble_get"
	case KindCreate:
		return "bubble_create"
	case KindUpdate:
		return "bubble_update"
	case KindDelete:
		return "bubble_delete"
	case KindWorkflow:
		return "bubble_workflow"
	default:
		return "unknown"
	}
}

// Mutating reports whether the tool writes state on the upstream app.
// Mutating tools are refused unless the server runs in read-write mode.
func (k Kind) Mutating() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete, KindWorkflow:
		return true
	default:
		return false
	}
}

// RequiredArgs lists the top-level argument names that must be present for
// the tool to be dispatched. Optional arguments (list's limit/cursor, the
// workflow payload) are not listed.
func (k Kind) RequiredArgs() []string {
	switch k {
	case KindList:
		return []string{"dataType"}
	case KindGet, KindDelete:
		return []string{"dataType", "id"}
	case KindCreate:
		return []string{"dataType", "data"}
	case KindUpdate:
		return []string{"dataType", "id", "data"}
	case KindWorkflow:
		return []string{"workflowName"}
	default:
		return nil
	}
}

// Tool is one entry of the catalog announced to MCP clients.
type Tool struct {
	Kind Kind `json:"-"`

	// Name MUST be unique within the MCP server.
	Name string `json:"name"`

	// Description explains what the tool does. This is what the LLM reads
	// when deciding whether to call the tool.
	Description string `json:"description"`

	// InputSchema defines the arguments the tool accepts, in JSON Schema
	// form.
	InputSchema JSONSchemaProps `json:"input_schema"`
}

// JSONSchemaProps is a simplified JSON Schema node, sufficient for the flat
// argument objects the catalog declares.
type JSONSchemaProps struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]JSONSchemaProps `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
	Items       *JSONSchemaProps           `json:"items,omitempty"`
	Format      string                     `json:"format,omitempty"`
	Enum        []interface{}              `json:"enum,omitempty"`
}
