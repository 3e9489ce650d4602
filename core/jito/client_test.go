package jito

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
)

func signedTestTx(t *testing.T) *solana.Transaction {
	t.Helper()
	payer := solana.NewWallet()

	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash(solana.NewWallet().PublicKey()),
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(payer.PublicKey()) {
			return &payer.PrivateKey
		}
		return nil
	})
	if err != nil {
		t.Fatalf("sign tx: %v", err)
	}
	return tx
}

func TestSendBundle(t *testing.T) {
	tx := signedTestTx(t)
	wantRaw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal tx: %v", err)
	}

	var gotReq rpcRequest
	var gotParams [][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		raw, _ := json.Marshal(gotReq.Params)
		if err := json.Unmarshal(raw, &gotParams); err != nil {
			t.Errorf("decode params: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  "bundle-abc123",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	bundleID, err := c.SendBundle(context.Background(), tx)
	if err != nil {
		t.Fatalf("SendBundle: %v", err)
	}
	if bundleID != "bundle-abc123" {
		t.Fatalf("bundle id = %q", bundleID)
	}

	if gotReq.Jsonrpc != "2.0" || gotReq.Method != "sendBundle" {
		t.Fatalf("rpc envelope = %+v", gotReq)
	}
	if len(gotParams) != 1 || len(gotParams[0]) != 1 {
		t.Fatalf("params = %v, want one single-transaction bundle", gotParams)
	}
	decoded, err := base58.Decode(gotParams[0][0])
	if err != nil {
		t.Fatalf("bundle payload is not base58: %v", err)
	}
	if !bytes.Equal(decoded, wantRaw) {
		t.Fatal("bundle payload must be the serialized signed transaction")
	}
}

func TestSendBundleRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32602, "message": "bundle too large"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, err := c.SendBundle(context.Background(), signedTestTx(t)); err == nil {
		t.Fatal("relay error must surface to the caller")
	}
}

func TestGetTipAccounts(t *testing.T) {
	accounts := []string{
		"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
		"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "getTipAccounts" {
			t.Errorf("method = %s", req.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  accounts,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	got, err := c.GetTipAccounts(context.Background())
	if err != nil {
		t.Fatalf("GetTipAccounts: %v", err)
	}
	if len(got) != 2 || got[0] != accounts[0] {
		t.Fatalf("tip accounts = %v", got)
	}
}
