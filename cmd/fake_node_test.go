package cmd

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/marketplace"
	"github.com/tranvictor/kiosk/util/reader"
)

// fakeNode is an in memory fullnode serving the REST endpoints kiosk
// uses. Submitted txs commit immediately.
type fakeNode struct {
	mu sync.Mutex

	// emitEvent makes create_stall emit StallCreated. eventStall overrides
	// the emitted address, the derived address is used when empty.
	emitEvent  bool
	eventStall string
	// revertWith makes the next submitted tx fail with this vm status.
	revertWith string
	balance    uint64

	// tamper replaces the signing message encode_submission returns.
	tamper string

	seqs        map[string]uint64
	txs         map[string]*common.Transaction
	stalls      map[string]string
	listings    map[string]uint64
	collections map[string]bool
	tokens      map[string][]reader.DigitalAsset
	submitted   []*common.SignedTransaction
}

const fakeChainID = 4

func newFakeNode(t *testing.T) (*fakeNode, string) {
	f := &fakeNode{
		emitEvent: true,
		balance:   12345,
		seqs:      map[string]uint64{},
		txs:       map[string]*common.Transaction{},
		stalls:    map[string]string{},
		listings:  map[string]uint64{},

		collections: map[string]bool{},
		tokens:      map[string][]reader.DigitalAsset{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1", f.ledgerInfo)
	mux.HandleFunc("GET /v1/accounts/{addr}", f.account)
	mux.HandleFunc("GET /v1/accounts/{addr}/resources", f.resources)
	mux.HandleFunc("POST /v1/graphql", f.graphql)
	mux.HandleFunc("GET /v1/estimate_gas_price", f.gasPrice)
	mux.HandleFunc("POST /v1/transactions/encode_submission", f.encode)
	mux.HandleFunc("POST /v1/transactions", f.submit)
	mux.HandleFunc("GET /v1/transactions/by_hash/{hash}", f.txByHash)
	mux.HandleFunc("POST /v1/view", f.view)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL + "/v1"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, reader.APIError{Message: msg, ErrorCode: code})
}

func (f *fakeNode) ledgerInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reader.LedgerInfo{ChainID: fakeChainID, LedgerVersion: "100"})
}

func (f *fakeNode) account(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	addr := r.PathValue("addr")
	writeJSON(w, http.StatusOK, reader.AccountData{
		SequenceNumber:    fmt.Sprint(f.seqs[addr]),
		AuthenticationKey: addr,
	})
}

func (f *fakeNode) gasPrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"gas_estimate": 100})
}

// signingMessage types the arguments from the known entry functions, as
// a node does from the module abi, and encodes tx.
func signingMessage(tx *common.RawTransaction) ([]byte, error) {
	if tx.Payload == nil {
		return nil, fmt.Errorf("no payload")
	}
	parts := strings.Split(tx.Payload.Function, "::")
	types, found := marketplace.ArgumentTypes(parts[len(parts)-1])
	if !found {
		return nil, fmt.Errorf("unknown function %s", tx.Payload.Function)
	}
	tx.Payload.ArgumentTypes = types
	return common.SigningMessage(tx, fakeChainID)
}

func (f *fakeNode) encode(w http.ResponseWriter, r *http.Request) {
	tx := &common.RawTransaction{}
	if err := json.NewDecoder(r.Body).Decode(tx); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	msg, err := signingMessage(tx)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tamper != "" {
		writeJSON(w, http.StatusOK, f.tamper)
		return
	}
	writeJSON(w, http.StatusOK, hexutil.Encode(msg))
}

func (f *fakeNode) resources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []reader.Resource{
		{Type: "0x1::account::Account", Data: json.RawMessage(`{}`)},
	})
}

func (f *fakeNode) graphql(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Variables struct {
			Owner string `json:"owner"`
		} `json:"variables"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"errors": []map[string]string{{"message": err.Error()}}})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := f.tokens[req.Variables.Owner]
	if owned == nil {
		owned = []reader.DigitalAsset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"current_token_ownerships_v2": owned},
	})
}

func (f *fakeNode) submit(w http.ResponseWriter, r *http.Request) {
	tx := &common.SignedTransaction{}
	if err := json.NewDecoder(r.Body).Decode(tx); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if !validSignature(tx) {
		writeAPIError(w, http.StatusBadRequest, "invalid_signature", "signature does not verify")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, tx)
	f.seqs[tx.Sender]++
	hash := fmt.Sprintf("0x%064x", len(f.submitted))

	committed := &common.Transaction{
		Type:     "user_transaction",
		Hash:     hash,
		Version:  fmt.Sprint(1000 + len(f.submitted)),
		Sender:   tx.Sender,
		Success:  f.revertWith == "",
		VMStatus: "Executed successfully",
		GasUsed:  "42",
		Payload:  tx.Payload,
	}
	if f.revertWith == "" && strings.HasSuffix(tx.Payload.Function, "::create_test_nft") && !f.collections[tx.Sender] {
		f.revertWith = "Move abort in 0x4::collection: ECOLLECTION_DOES_NOT_EXIST(0x60001)"
	}
	if f.revertWith != "" {
		committed.Success = false
		committed.VMStatus = f.revertWith
		f.revertWith = ""
	} else {
		f.apply(committed)
	}
	f.txs[hash] = committed
	writeJSON(w, http.StatusAccepted, common.Transaction{Type: "pending_transaction", Hash: hash})
}

func validSignature(tx *common.SignedTransaction) bool {
	if tx.Signature == nil {
		return false
	}
	msg, err := signingMessage(&tx.RawTransaction)
	if err != nil {
		return false
	}
	pub, err := hexutil.Decode(tx.Signature.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hexutil.Decode(tx.Signature.Signature)
	return err == nil && ed25519.Verify(pub, msg, sig)
}

// apply runs the marketplace entry function of a successful tx.
func (f *fakeNode) apply(tx *common.Transaction) {
	args := tx.Payload.Arguments
	str := func(i int) string { s, _ := args[i].(string); return s }
	switch {
	case strings.HasSuffix(tx.Payload.Function, "::create_stall"):
		derived, err := common.DeriveResourceAddress(tx.Sender, str(0))
		if err != nil {
			return
		}
		f.stalls[derived.Hex()] = tx.Sender
		if f.emitEvent {
			addr := f.eventStall
			if addr == "" {
				addr = derived.Hex()
			}
			if parsed, err := common.ParseAddress(addr); err == nil {
				f.stalls[parsed.Hex()] = tx.Sender
			}
			tx.Events = append(tx.Events, common.Event{
				Type: "0x42::marketplace::StallCreated",
				Data: map[string]any{"stall_addr": addr, "owner": tx.Sender},
			})
		}
	case strings.HasSuffix(tx.Payload.Function, "::list_item"):
		var price uint64
		_, _ = fmt.Sscan(str(2), &price)
		f.listings[str(0)+"/"+str(1)] = price
	case strings.HasSuffix(tx.Payload.Function, "::buy"):
		delete(f.listings, str(0)+"/"+str(1))
	case strings.HasSuffix(tx.Payload.Function, "::create_test_collection"):
		f.collections[tx.Sender] = true
	case strings.HasSuffix(tx.Payload.Function, "::create_test_nft"):
		creator := common.MustParseAddress(tx.Sender)
		token := common.DeriveObjectAddress(creator, []byte("Test NFT Collection::"+str(0)))
		f.tokens[str(3)] = append(f.tokens[str(3)], reader.DigitalAsset{
			TokenDataID:  token.Hex(),
			OwnerAddress: str(3),
			TokenData:    &reader.TokenData{TokenName: str(0), Description: str(1), TokenURI: str(2), CollectionID: "0xc011"},
		})
	}
}

func (f *fakeNode) txByHash(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, found := f.txs[r.PathValue("hash")]
	if !found {
		writeAPIError(w, http.StatusNotFound, "transaction_not_found", "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (f *fakeNode) view(w http.ResponseWriter, r *http.Request) {
	req := common.ViewRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	arg := func(i int) string {
		if i >= len(req.Arguments) {
			return ""
		}
		s, _ := req.Arguments[i].(string)
		return s
	}
	abort := func(name string) {
		writeAPIError(w, http.StatusBadRequest, "invalid_input",
			fmt.Sprintf("Move abort in 0x42::marketplace: %s(0x60001): ", name))
	}

	switch {
	case req.Function == reader.CoinBalanceView:
		writeJSON(w, http.StatusOK, []string{fmt.Sprint(f.balance)})
	case strings.HasSuffix(req.Function, "::get_stall_owner"):
		owner, found := f.stalls[arg(0)]
		if !found {
			abort("E_KIOSK_NOT_FOUND")
			return
		}
		writeJSON(w, http.StatusOK, []string{owner})
	case strings.HasSuffix(req.Function, "::is_listed"):
		_, listed := f.listings[arg(0)+"/"+arg(1)]
		writeJSON(w, http.StatusOK, []bool{listed})
	case strings.HasSuffix(req.Function, "::get_price"):
		price, listed := f.listings[arg(0)+"/"+arg(1)]
		if !listed {
			abort("E_NOT_LISTED")
			return
		}
		writeJSON(w, http.StatusOK, []string{fmt.Sprint(price)})
	default:
		writeAPIError(w, http.StatusBadRequest, "invalid_input", "unknown view "+req.Function)
	}
}

func (f *fakeNode) lastSubmitted() *common.SignedTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submitted) == 0 {
		return nil
	}
	return f.submitted[len(f.submitted)-1]
}

// addTx stores a committed tx as if another client had submitted it.
func (f *fakeNode) addTx(tx *common.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[tx.Hash] = tx
}
