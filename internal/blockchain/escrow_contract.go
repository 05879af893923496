package blockchain

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
)

// Anchor instruction discriminators: first 8 bytes of
// sha256("global:<method>"), per the escrow program IDL.
var (
	transferCurrencyDiscriminator = []byte{0x4a, 0x1e, 0x72, 0x9b, 0x0d, 0x5c, 0xe1, 0x38}
	transferAssetDiscriminator    = []byte{0x8f, 0x23, 0xb6, 0x41, 0xd7, 0x09, 0x5a, 0xcc}
)

// EscrowContract drives the on-chain escrow program holding staked denom and
// auctioned assets. The marketplace only issues instructions through it after
// committing local state; transfers are assumed reliable.
type EscrowContract struct {
	client         *ChainClient
	programID      string
	assetProgramID string
}

// NewEscrowContract creates a new escrow contract instance
func NewEscrowContract(client *ChainClient, programID, assetProgramID string) *EscrowContract {
	return &EscrowContract{
		client:         client,
		programID:      programID,
		assetProgramID: assetProgramID,
	}
}

// VerifyDeposit verifies that a deposit into escrow (staked denom or an
// auctioned asset) has confirmed on-chain.
func (e *EscrowContract) VerifyDeposit(ctx context.Context, signature string) (bool, error) {
	if signature == "" {
		return false, nil
	}

	confirmed, err := e.client.IsConfirmed(ctx, signature)
	if err != nil {
		return false, fmt.Errorf("failed to verify deposit: %w", err)
	}

	// Ideally the transaction logs are parsed here to ensure the deposit
	// called our program with the expected instruction. Confirmation
	// existence is the first gate.

	return confirmed, nil
}

// TransferCurrency instructs the escrow program to move staked denom between
// accounts (or back out of escrow on withdrawal). Requires the server to hold
// the escrow authority keypair; without one the instruction is logged and a
// placeholder signature returned.
func (e *EscrowContract) TransferCurrency(ctx context.Context, from, to string, amount int64, denom string) (string, error) {
	if e.client.serverWallet == nil {
		log.Printf("[escrow] transfer %d %s: %s -> %s (program %s)", amount, denom, from, to, e.programID)
		return fmt.Sprintf("escrow_transfer_%s_%s_%d", from, to, amount), nil
	}

	programID, err := solana.PublicKeyFromBase58(e.programID)
	if err != nil {
		return "", fmt.Errorf("invalid escrow program id: %w", err)
	}
	fromKey, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return "", fmt.Errorf("invalid source address: %w", err)
	}
	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}

	// Discriminator (8 bytes) + amount u64 (little-endian)
	data := make([]byte, 16)
	copy(data[0:8], transferCurrencyDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], uint64(amount))

	authority := e.client.serverWallet.PublicKey()
	accounts := []*solana.AccountMeta{
		{PublicKey: fromKey, IsWritable: true, IsSigner: false},                // source escrow account
		{PublicKey: toKey, IsWritable: true, IsSigner: false},                  // destination escrow account
		{PublicKey: authority, IsWritable: false, IsSigner: true},              // authority
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false}, // system_program
	}

	sig, err := e.submit(ctx, solana.NewInstruction(programID, accounts, data))
	if err != nil {
		return "", fmt.Errorf("failed to submit currency transfer: %w", err)
	}

	log.Printf("[escrow] transfer %d %s: %s -> %s (tx %s)", amount, denom, from, to, sig)
	return sig, nil
}

// TransferAsset instructs the asset registry program to move a specific
// non-fungible asset between accounts.
func (e *EscrowContract) TransferAsset(ctx context.Context, from, to, tokenID, assetClass string) (string, error) {
	if e.client.serverWallet == nil {
		log.Printf("[escrow] asset transfer %s/%s: %s -> %s (program %s)", assetClass, tokenID, from, to, e.assetProgramID)
		return fmt.Sprintf("escrow_asset_%s_%s", assetClass, tokenID), nil
	}

	programID, err := solana.PublicKeyFromBase58(e.assetProgramID)
	if err != nil {
		return "", fmt.Errorf("invalid asset program id: %w", err)
	}
	fromKey, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return "", fmt.Errorf("invalid source address: %w", err)
	}
	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}

	// Discriminator (8 bytes) + token_id and asset_class as Anchor strings
	// (u32 length prefix, little-endian)
	data := make([]byte, 0, 8+4+len(tokenID)+4+len(assetClass))
	data = append(data, transferAssetDiscriminator...)
	data = appendAnchorString(data, tokenID)
	data = appendAnchorString(data, assetClass)

	authority := e.client.serverWallet.PublicKey()
	accounts := []*solana.AccountMeta{
		{PublicKey: fromKey, IsWritable: true, IsSigner: false},   // current holder
		{PublicKey: toKey, IsWritable: true, IsSigner: false},     // new holder
		{PublicKey: authority, IsWritable: false, IsSigner: true}, // authority
	}

	sig, err := e.submit(ctx, solana.NewInstruction(programID, accounts, data))
	if err != nil {
		return "", fmt.Errorf("failed to submit asset transfer: %w", err)
	}

	log.Printf("[escrow] asset transfer %s/%s: %s -> %s (tx %s)", assetClass, tokenID, from, to, sig)
	return sig, nil
}

// submit signs an escrow instruction with the server authority and sends it.
func (e *EscrowContract) submit(ctx context.Context, instruction solana.Instruction) (string, error) {
	recent, err := e.client.GetRecentBlockhash(ctx)
	if err != nil {
		return "", err
	}

	authority := e.client.serverWallet.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent,
		solana.TransactionPayer(authority),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(authority) {
			return &e.client.serverWallet.PrivateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// ListingPDA derives the escrow account address for a listing.
func (e *EscrowContract) ListingPDA(listingID int64) (solana.PublicKey, uint8, error) {
	programID, err := solana.PublicKeyFromBase58(e.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("invalid escrow program id: %w", err)
	}

	listingIDBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(listingIDBytes, uint64(listingID))

	seeds := [][]byte{
		[]byte("listing"),
		listingIDBytes,
	}

	pda, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive listing PDA: %w", err)
	}

	return pda, bump, nil
}

// EscrowStateView reads the on-chain state of a listing's escrow account.
func (e *EscrowContract) EscrowStateView(ctx context.Context, listingID int64) (map[string]interface{}, error) {
	pda, _, err := e.ListingPDA(listingID)
	if err != nil {
		return nil, err
	}

	accountInfo, err := e.client.rpcClient.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch escrow account: %w", err)
	}

	if accountInfo == nil || accountInfo.Value == nil {
		return map[string]interface{}{
			"escrow_account": pda.String(),
			"state":          "Closed",
		}, nil
	}

	return map[string]interface{}{
		"escrow_account": pda.String(),
		"state":          "Active",
		"lamports":       accountInfo.Value.Lamports,
	}, nil
}

func appendAnchorString(data []byte, s string) []byte {
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(s)))
	data = append(data, lenBuf...)
	return append(data, s...)
}
