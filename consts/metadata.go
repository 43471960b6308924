package consts

// Path segments of the view endpoints
const (
	DesignPrefix = "_design/"
	DesignPath   = "_design"
	ViewPath     = "_view"
	AllDocsPath  = "_all_docs"
	QueriesPath  = "queries"
)

// Header keys and values
const (
	AcceptKey       string = "Accept"
	ContentTypeKey  string = "Content-Type"
	JSONContentType string = "application/json"
)

// TraceKey global trace id header
const TraceKey string = "x-couchview-trace"

// BadMatch is the server error code returned by servers without the
// batched queries endpoint
const BadMatch = "badmatch"
