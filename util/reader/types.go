package reader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNoNodes         = errors.New("no nodes configured")
	ErrIndexer         = errors.New("indexer query failed")
)

type LedgerInfo struct {
	ChainID             uint8  `json:"chain_id"`
	Epoch               string `json:"epoch"`
	LedgerVersion       string `json:"ledger_version"`
	OldestLedgerVersion string `json:"oldest_ledger_version"`
	BlockHeight         string `json:"block_height"`
	LedgerTimestamp     string `json:"ledger_timestamp"`
	NodeRole            string `json:"node_role"`
}

// TimestampSecs is the ledger timestamp, which the node reports in
// microseconds, in seconds.
func (li *LedgerInfo) TimestampSecs() int64 {
	us, _ := strconv.ParseInt(li.LedgerTimestamp, 10, 64)
	return us / 1_000_000
}

type AccountData struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

func (ad *AccountData) Sequence() (uint64, error) {
	return strconv.ParseUint(ad.SequenceNumber, 10, 64)
}

// Resource is one Move resource stored under an account.
type Resource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TokenData describes a digital asset as the indexer knows it.
type TokenData struct {
	TokenName    string `json:"token_name"`
	Description  string `json:"description"`
	TokenURI     string `json:"token_uri"`
	CollectionID string `json:"collection_id"`
}

// DigitalAsset is one row of the indexer's current_token_ownerships_v2.
type DigitalAsset struct {
	TokenDataID  string     `json:"token_data_id"`
	StorageID    string     `json:"storage_id"`
	OwnerAddress string     `json:"owner_address"`
	TokenData    *TokenData `json:"current_token_data"`
}

// ObjectAddress is the token data id, or the storage id when the indexer
// has none.
func (da DigitalAsset) ObjectAddress() string {
	if da.TokenDataID != "" {
		return da.TokenDataID
	}
	return da.StorageID
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type ownedAssetsResponse struct {
	Data struct {
		Ownerships []DigitalAsset `json:"current_token_ownerships_v2"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type gasEstimation struct {
	DeprioritizedGasEstimate uint64 `json:"deprioritized_gas_estimate"`
	GasEstimate              uint64 `json:"gas_estimate"`
	PrioritizedGasEstimate   uint64 `json:"prioritized_gas_estimate"`
}

// APIError is the error body of a non 2xx node response. Move aborts
// surface here with the abort code in Message and VMErrorCode set.
type APIError struct {
	StatusCode  int    `json:"-"`
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VMErrorCode uint64 `json:"vm_error_code,omitempty"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("node returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("node returned %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
}
