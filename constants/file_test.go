package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadName(t *testing.T) {
	assert.Equal(t, "81351387_BOM.xlsm", UploadName("81351387", SourceBOM, ".XLSM"))
	assert.Equal(t, "81351387_SAP DATA.pdf", UploadName("81351387", SourceSAP, ".pdf"))
	assert.Equal(t, "81351387_CS.pdf", UploadName("81351387", SourceCS, "pdf"))
}

func TestCategoryForSort(t *testing.T) {
	cat, ok := CategoryForSort("PL BOWL")
	assert.True(t, ok)
	assert.Equal(t, "Bowl Assembly", cat)

	cat, ok = CategoryForSort(" PL XYZ ")
	assert.True(t, ok)
	assert.Equal(t, "PL XYZ", cat)

	_, ok = CategoryForSort("")
	assert.False(t, ok)
}
