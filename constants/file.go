package constants

import "strings"

// Source is one of the three document kinds kept in a folder.
type Source string

const (
	SourceBOM Source = "bom"
	SourceSAP Source = "sap"
	SourceCS  Source = "cs"
)

// AllSources lists the sources in the order extractors are registered.
var AllSources = []Source{SourceCS, SourceBOM, SourceSAP}

// SourceGlobs holds the file name patterns that locate each source in a raw folder.
// Patterns are tried in order; the first one with a hit wins.
var SourceGlobs = map[Source][]string{
	SourceBOM: {"*BOM.XLSX", "*BOM.xlsx", "*BOM.xlsm", "*BOM.xltx", "*BOM.xltm"},
	SourceSAP: {"*SAP DATA.pdf"},
	SourceCS:  {"*CS.pdf"},
}

// Artifact file names written to a processed folder.
const (
	ArtifactBOM        = "bom_excel.json"
	ArtifactCS         = "cs_bom.json"
	ArtifactSAPRaw     = "sap_raw.json"
	ArtifactSAPData    = "sap_data.json"
	ArtifactComparison = "abbrev_comparison.json"
	ArtifactRendered   = "rendered_page.png"
	ArtifactCSTable    = "cs_table.png"
)

// UploadExtensions holds the accepted upload extensions per source (lowercase, without '.').
var UploadExtensions = map[Source]map[string]struct{}{
	SourceBOM: {"xlsx": {}, "xlsm": {}, "xltx": {}, "xltm": {}},
	SourceSAP: {"pdf": {}},
	SourceCS:  {"pdf": {}},
}

// UploadName returns the canonical raw file name for an uploaded source.
func UploadName(folderID string, src Source, ext string) string {
	switch src {
	case SourceBOM:
		return folderID + "_BOM." + NormalizeExt(ext)
	case SourceSAP:
		return folderID + "_SAP DATA.pdf"
	default:
		return folderID + "_CS.pdf"
	}
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
