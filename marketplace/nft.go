package marketplace

import (
	"context"
	"fmt"

	"github.com/tranvictor/kiosk/common"
)

// CreateTestCollection creates the test collection of the account. Each
// account needs it once before minting.
func (c *Client) CreateTestCollection(ctx context.Context) (common.TxInfo, error) {
	return c.submit(ctx, OpCreateCollection, c.module.CreateTestCollectionPayload())
}

// MintTestNFT mints a transferable token into the account's test
// collection and sends it to recipient, or to the account itself when
// recipient is empty.
func (c *Client) MintTestNFT(ctx context.Context, name, description, uri, recipient string) (common.TxInfo, error) {
	if c.account == nil {
		return common.TxInfo{}, ErrNoAccount
	}
	if name == "" {
		return common.TxInfo{}, fmt.Errorf("the nft needs a name")
	}
	to := c.account.Address()
	if recipient != "" {
		addr, err := common.ParseAddress(recipient)
		if err != nil {
			return common.TxInfo{}, fmt.Errorf("recipient: %w", err)
		}
		to = addr
	}
	return c.submit(ctx, OpMintNFT, c.module.CreateTestNFTPayload(name, description, uri, to))
}
