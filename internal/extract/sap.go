package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// TextSource returns the text of a PDF, one element per page.
type TextSource interface {
	Text(ctx context.Context, path string) ([]string, error)
}

// Key/value grammars, tried in order.
var (
	reAsteriskPair = regexp.MustCompile(`^(.+?)\s*\*\s*(.+)`)
	reWidePair     = regexp.MustCompile(`^(.+?)\s{2,}(.+)$`)
)

// ParseKVLine splits a specification line into key and value.
func ParseKVLine(line string) (string, string, bool) {
	for _, re := range []*regexp.Regexp{reAsteriskPair, reWidePair} {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

// KeyValues is an insertion-ordered map; setting an existing key keeps its
// position and replaces the value.
type KeyValues struct {
	keys   []string
	values map[string]string
}

func newKeyValues() *KeyValues { return &KeyValues{values: map[string]string{}} }

func (kv *KeyValues) Set(key, value string) {
	if _, ok := kv.values[key]; !ok {
		kv.keys = append(kv.keys, key)
	}
	kv.values[key] = value
}

func (kv *KeyValues) Len() int { return len(kv.keys) }

// Map returns a copy of the pairs.
func (kv *KeyValues) Map() map[string]string {
	out := make(map[string]string, len(kv.values))
	for k, v := range kv.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the pairs as an object in insertion order.
func (kv *KeyValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range kv.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(kv.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseKeyValues collects the key/value pairs of every page. Later keys win.
func ParseKeyValues(pages []string) *KeyValues {
	kv := newKeyValues()
	for _, page := range pages {
		sc := bufio.NewScanner(strings.NewReader(page))
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if k, v, ok := ParseKVLine(line); ok {
				kv.Set(k, v)
			}
		}
	}
	return kv
}

// Classify turns one raw pair into a PartSpec when the key names a known part,
// otherwise into a MetadataEntry.
func Classify(key, value string, v *vocab.Vocabulary) entity.SpecEntry {
	part, ok := v.Lookup(key)
	if !ok {
		return entity.MetadataEntry{Key: key, Value: value}
	}
	spec := entity.PartSpec{Part: part, Raw: value, Coating: SpecCoating(value)}
	if mat, ok := SpecMaterial(value); ok {
		spec.Material = &mat
	}
	return spec
}

// Categorize folds the ordered pairs into a SpecDocument.
func Categorize(kv *KeyValues, v *vocab.Vocabulary) *entity.SpecDocument {
	doc := entity.NewSpecDocument()
	for _, k := range kv.keys {
		doc.Add(Classify(k, kv.values[k], v))
	}
	return doc
}

// SAPExtractor reads the SAP specification PDF of a folder.
type SAPExtractor struct {
	base
	text  TextSource
	vocab *vocab.Vocabulary
}

// NewSAPExtractor returns a specification extractor using the given specification vocabulary.
func NewSAPExtractor(layout *storage.Layout, text TextSource, v *vocab.Vocabulary, logger *slog.Logger) *SAPExtractor {
	return &SAPExtractor{base: newBase(layout, logger), text: text, vocab: v}
}

func (e *SAPExtractor) Source() constants.Source { return constants.SourceSAP }

// Extract parses the document text and persists sap_raw.json and sap_data.json.
func (e *SAPExtractor) Extract(ctx context.Context, folderID string) (Output, error) {
	empty := SpecResult{Document: entity.NewSpecDocument(), Raw: map[string]string{}}

	rawDir, processedDir, err := e.folders(folderID)
	if err != nil {
		return nil, err
	}
	path, ok, err := e.layout.Locate(rawDir, constants.SourceSAP)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.logger.Error("extract.sap.missing_input", "folder_id", folderID, "dir", rawDir)
		return empty, nil
	}

	pages, err := e.text.Text(ctx, path)
	if err != nil {
		return nil, err
	}
	kv := ParseKeyValues(pages)
	if kv.Len() == 0 {
		e.logger.Warn("extract.sap.empty", "folder_id", folderID, "file", filepath.Base(path), "pages", len(pages))
		return empty, nil
	}

	res := SpecResult{Document: Categorize(kv, e.vocab), Raw: kv.Map()}
	if err := storage.WriteJSON(filepath.Join(processedDir, constants.ArtifactSAPRaw), kv); err != nil {
		return nil, err
	}
	if err := storage.WriteJSON(filepath.Join(processedDir, constants.ArtifactSAPData), res.Document); err != nil {
		return nil, err
	}
	e.logger.Info("extract.sap.done", "folder_id", folderID,
		"fields", kv.Len(), "parts", len(res.Document.Parts), "metadata", len(res.Document.Metadata))
	return res, nil
}
