package descriptions

import "sort"

// Tool names
const (
	ToolExtractFile      = "tag_extract_file"
	ToolExtractDirectory = "tag_extract_directory"
	ToolValidateFile     = "tag_validate_file"
	ToolSearchDirectory  = "tag_search_directory"
)

const (
	TagExtractFileDescription = `Extract the 20 typed fields of a single receiving tag.

**When to use:** You have one receiving tag document (a single page PDF, or a .json page dump with blocks/lines/spans) and need its part number, serial number, dates, quantity and the rest as structured data.

**Output:** A JSON record with snake_case keys. Optional fields that carry only their label on the tag are null, never an empty string. rec_date is YYYY-MM-DD.

**Failures:** The tool fails instead of guessing. The error names its kind:
• UNSUPPORTED_FORMAT: the page does not have the 12 blocks of the template
• MISSING_FIELD: a field's block, line or run is absent
• MALFORMED_VALUE: quantity, receiver or rec_date could not be parsed
• AMBIGUOUS_PRESENCE: an optional field's line has neither 1 nor 2 text runs
• PAGE_COUNT: the document has more than one page

**Examples:**
• "Read tags/2024-05-10-dock3.pdf and give me the serial number"
• "What quantity was received on tag_0042.json?"`

	TagExtractDirectoryDescription = `Extract every receiving tag in a directory and return a JSON report.

**When to use:** Reconciling a day's deliveries, or checking which tags in a folder fail to parse.

**Output:** A report with a run_id, success and failure counts and one entry per document: either its record or its error and error_kind. One bad tag never aborts the batch.

**Examples:**
• "Extract all tags in /receiving/2024-05 and list the ones with errors"
• "Summarize quantities per part number for the tags matching 'dock3'"

**Best practices:** Use the query parameter to narrow large folders; results are ordered by path.`

	TagValidateFileDescription = `Check whether a document is a receiving tag this server can read.

**When to use:** Before relying on a document in an automated workflow, or to explain why extraction fails.

**Checks:** file type (.pdf or .json page dump), size limit, readability, single page, and a full dry-run of field extraction. The response names the failing check.`

	TagSearchDirectoryDescription = `List receiving tag documents (.pdf and .json page dumps) in a directory.

**When to use:** Discover what is available before extracting.

**Examples:**
• "Which tag documents are in the default directory?"
• "Find tags with 'dock3' in the name"

**Best practices:** Fuzzy matching splits names on spaces, dashes, underscores and dots; every query word must appear in the file name.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolExtractFile:      TagExtractFileDescription,
	ToolExtractDirectory: TagExtractDirectoryDescription,
	ToolValidateFile:     TagValidateFileDescription,
	ToolSearchDirectory:  TagSearchDirectoryDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
