package bleve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"go.uber.org/zap"

	"github.com/tranvictor/kiosk/db"
)

const batchSize = 1000

// BleveDB is a full text index over the names of a
// db.DefaultAddressDatabase. Hash is the database hash the index was
// built from, kept next to the index so a changed database triggers a
// rebuild.
type BleveDB struct {
	index  bleve.Index
	Hash   string `json:"hash"`
	path   string
	logger *zap.Logger
}

type document struct {
	Address string `json:"address"`
	Desc    string `json:"desc"`
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName

	addressFieldMapping := bleve.NewTextFieldMapping()
	addressFieldMapping.Analyzer = keyword.Name

	defaultMapping := bleve.NewDocumentMapping()
	defaultMapping.AddFieldMappingsAt("desc", textFieldMapping)
	defaultMapping.AddFieldMappingsAt("address", addressFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", defaultMapping)
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	return indexMapping
}

func metaPath(path string) string {
	return path + ".json"
}

func loadHash(path string) string {
	content, err := os.ReadFile(metaPath(path))
	if err != nil {
		return ""
	}
	meta := struct {
		Hash string `json:"hash"`
	}{}
	if json.Unmarshal(content, &meta) != nil {
		return ""
	}
	return meta.Hash
}

// Open opens the index at path, building or rebuilding it when it does
// not match addrs. The returned index must be closed.
func Open(path string, addrs *db.DefaultAddressDatabase, logger *zap.Logger) (*BleveDB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &BleveDB{path: path, logger: logger, Hash: loadHash(path)}

	index, err := bleve.Open(path)
	if err != nil && !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		logger.Warn("address index is unreadable, rebuilding it", zap.String("path", path), zap.Error(err))
		if err := os.RemoveAll(path); err != nil {
			return nil, err
		}
		err = bleve.ErrorIndexPathDoesNotExist
	}
	if err == nil && result.Hash != addrs.Hash() {
		_ = index.Close()
		if err := os.RemoveAll(path); err != nil {
			return nil, err
		}
		err = bleve.ErrorIndexPathDoesNotExist
	}
	if err == nil {
		result.index = index
		return result, nil
	}

	index, err = bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("couldn't create address index: %w", err)
	}
	result.index = index
	if err := result.indexAddresses(addrs.Data); err != nil {
		_ = index.Close()
		return nil, err
	}
	result.Hash = addrs.Hash()
	if err := result.Persist(); err != nil {
		_ = index.Close()
		return nil, err
	}
	return result, nil
}

// NewMemOnly indexes addrs in memory.
func NewMemOnly(addrs *db.DefaultAddressDatabase) (*BleveDB, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	result := &BleveDB{index: index, logger: zap.NewNop()}
	if err := result.indexAddresses(addrs.Data); err != nil {
		return nil, err
	}
	result.Hash = addrs.Hash()
	return result, nil
}

func (bleveDB *BleveDB) Persist() error {
	if bleveDB.path == "" {
		return nil
	}
	jsonData, err := json.MarshalIndent(bleveDB, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath(bleveDB.path), jsonData, 0o644)
}

func (bleveDB *BleveDB) Close() error {
	return bleveDB.index.Close()
}

// Search matches input against the names as a phrase, a prefix and a
// term one edit away. Scores are the bleve scores times 10^6.
func (bleveDB *BleveDB) Search(input string) ([]db.AddressDesc, []int, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return []db.AddressDesc{}, []int{}, nil
	}
	matchQuery := bleve.NewMatchPhraseQuery(input)
	prefixQuery := bleve.NewPrefixQuery(input)
	fuzzyQuery := bleve.NewFuzzyQuery(input)
	fuzzyQuery.Fuzziness = 1
	query := bleve.NewDisjunctionQuery(matchQuery, prefixQuery, fuzzyQuery)
	request := bleve.NewSearchRequest(query)
	request.Fields = []string{"address", "desc"}

	searchResults, err := bleveDB.index.Search(request)
	if err != nil {
		return nil, nil, fmt.Errorf("address search failed: %w", err)
	}

	results := []db.AddressDesc{}
	resultScores := []int{}
	for _, hit := range searchResults.Hits {
		desc, _ := hit.Fields["desc"].(string)
		results = append(results, db.AddressDesc{Address: hit.ID, Desc: desc})
		resultScores = append(resultScores, int(hit.Score*1000000))
	}
	return results, resultScores, nil
}

func (bleveDB *BleveDB) indexAddresses(addrs map[string]string) error {
	batch := bleveDB.index.NewBatch()
	for addr, desc := range addrs {
		if err := batch.Index(addr, document{Address: addr, Desc: desc}); err != nil {
			return err
		}
		if batch.Size() >= batchSize {
			if err := bleveDB.index.Batch(batch); err != nil {
				return err
			}
			batch = bleveDB.index.NewBatch()
		}
	}
	// flush the last batch
	if batch.Size() > 0 {
		if err := bleveDB.index.Batch(batch); err != nil {
			return err
		}
	}
	bleveDB.logger.Debug("indexed named addresses", zap.Int("count", len(addrs)))
	return nil
}
