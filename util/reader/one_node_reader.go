package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tranvictor/kiosk/common"
)

const TIMEOUT time.Duration = 4 * time.Second

// OneNodeReader talks to one fullnode REST endpoint, nodeURL including
// the /v1 suffix.
type OneNodeReader struct {
	nodeName string
	nodeURL  string
	client   *http.Client
}

func NewOneNodeReader(name, nodeURL string) *OneNodeReader {
	return NewOneNodeReaderWithClient(name, nodeURL, &http.Client{Timeout: TIMEOUT})
}

func NewOneNodeReaderWithClient(name, nodeURL string, client *http.Client) *OneNodeReader {
	return &OneNodeReader{
		nodeName: name,
		nodeURL:  strings.TrimRight(nodeURL, "/"),
		client:   client,
	}
}

func (onr *OneNodeReader) NodeName() string {
	return onr.nodeName
}

func (onr *OneNodeReader) NodeURL() string {
	return onr.nodeURL
}

func (onr *OneNodeReader) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("couldn't encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, onr.nodeURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := onr.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("couldn't read response of %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("couldn't decode response of %s: %w", path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (onr *OneNodeReader) LedgerInfo(ctx context.Context) (*LedgerInfo, error) {
	res := &LedgerInfo{}
	if err := onr.do(ctx, http.MethodGet, "", nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (onr *OneNodeReader) Account(ctx context.Context, address string) (*AccountData, error) {
	addr, err := common.CanonicalAddress(address)
	if err != nil {
		return nil, err
	}
	res := &AccountData{}
	err = onr.do(ctx, http.MethodGet, "/accounts/"+addr, nil, res)
	if isNotFound(err) {
		return nil, fmt.Errorf("%s: %w", addr, ErrAccountNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (onr *OneNodeReader) TransactionByHash(ctx context.Context, hash string) (*common.Transaction, error) {
	res := &common.Transaction{}
	err := onr.do(ctx, http.MethodGet, "/transactions/by_hash/"+url.PathEscape(hash), nil, res)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (onr *OneNodeReader) View(ctx context.Context, req common.ViewRequest) ([]json.RawMessage, error) {
	if req.TypeArguments == nil {
		req.TypeArguments = []string{}
	}
	if req.Arguments == nil {
		req.Arguments = []any{}
	}
	res := []json.RawMessage{}
	if err := onr.do(ctx, http.MethodPost, "/view", req, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// EncodeSubmission asks the node for the bytes an account signs to
// submit tx.
func (onr *OneNodeReader) EncodeSubmission(ctx context.Context, tx *common.RawTransaction) ([]byte, error) {
	var encoded string
	if err := onr.do(ctx, http.MethodPost, "/transactions/encode_submission", tx, &encoded); err != nil {
		return nil, err
	}
	msg, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("node returned malformed signing message %q: %w", encoded, err)
	}
	return msg, nil
}

func (onr *OneNodeReader) SubmitTransaction(ctx context.Context, tx *common.SignedTransaction) (*common.Transaction, error) {
	res := &common.Transaction{}
	if err := onr.do(ctx, http.MethodPost, "/transactions", tx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (onr *OneNodeReader) EstimateGasPrice(ctx context.Context) (uint64, error) {
	res := &gasEstimation{}
	if err := onr.do(ctx, http.MethodGet, "/estimate_gas_price", nil, res); err != nil {
		return 0, err
	}
	return res.GasEstimate, nil
}

func (onr *OneNodeReader) AccountResources(ctx context.Context, address string) ([]Resource, error) {
	addr, err := common.CanonicalAddress(address)
	if err != nil {
		return nil, err
	}
	res := []Resource{}
	err = onr.do(ctx, http.MethodGet, "/accounts/"+addr+"/resources", nil, &res)
	if isNotFound(err) {
		return nil, fmt.Errorf("%s: %w", addr, ErrAccountNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

const ownedAssetsQuery = `query OwnedDigitalAssets($owner: String, $limit: Int) {
  current_token_ownerships_v2(
    where: {owner_address: {_eq: $owner}, amount: {_gt: 0}}
    limit: $limit
  ) {
    token_data_id
    storage_id
    owner_address
    current_token_data {
      token_name
      description
      token_uri
      collection_id
    }
  }
}`

func (onr *OneNodeReader) OwnedDigitalAssets(ctx context.Context, owner string, limit int) ([]DigitalAsset, error) {
	addr, err := common.CanonicalAddress(owner)
	if err != nil {
		return nil, err
	}
	req := graphQLRequest{
		Query:     ownedAssetsQuery,
		Variables: map[string]any{"owner": addr, "limit": limit},
	}
	res := &ownedAssetsResponse{}
	if err := onr.do(ctx, http.MethodPost, "/graphql", req, res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexer, err)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrIndexer, strings.Join(msgs, "; "))
	}
	return res.Data.Ownerships, nil
}
