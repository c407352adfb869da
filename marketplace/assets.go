package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tranvictor/kiosk/common"
)

const (
	DefaultAssetLimit = 100

	AssetSourceIndexer   = "indexer"
	AssetSourceResources = "resources"
)

// tokenResourceMarkers pick the resources of an account that belong to a
// digital asset.
var tokenResourceMarkers = []string{"0x4::token::", "0x4::collection::", "aptos_token::"}

// OwnedAsset is a digital asset an account can list.
type OwnedAsset struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
	Collection  string `json:"collection"`
	Source      string `json:"source"`
}

// OwnedAssets lists the digital assets of owner. The indexer is asked
// first, then the token resources stored under owner itself are added.
// It fails only when both sources fail.
func (c *Client) OwnedAssets(ctx context.Context, owner string) ([]OwnedAsset, error) {
	addr, err := common.ParseAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	assets := []OwnedAsset{}
	seen := map[string]bool{}
	add := func(a OwnedAsset) {
		key := a.Address + "/" + a.Description
		if seen[key] {
			return
		}
		seen[key] = true
		assets = append(assets, a)
	}

	indexed, indexErr := c.reader.OwnedDigitalAssets(ctx, addr.Hex(), DefaultAssetLimit)
	if indexErr != nil {
		c.logger.Warn("couldn't list digital assets from the indexer", zap.Error(indexErr))
	}
	for _, da := range indexed {
		a := OwnedAsset{
			Address:    da.ObjectAddress(),
			Name:       "Unknown NFT",
			Collection: "Unknown Collection",
			Source:     AssetSourceIndexer,
		}
		if canonical, err := common.CanonicalAddress(a.Address); err == nil {
			a.Address = canonical
		}
		if td := da.TokenData; td != nil {
			if td.TokenName != "" {
				a.Name = td.TokenName
			}
			if td.CollectionID != "" {
				a.Collection = td.CollectionID
			}
			a.Description, a.URI = td.Description, td.TokenURI
		}
		add(a)
	}

	resources, resErr := c.reader.AccountResources(ctx, addr.Hex())
	if resErr != nil {
		c.logger.Warn("couldn't read account resources", zap.Error(resErr))
	}
	n := 0
	for _, r := range resources {
		if !isTokenResource(r.Type) {
			continue
		}
		add(OwnedAsset{
			Address:     addr.Hex(),
			Name:        fmt.Sprintf("Resource %d", n),
			Description: "Token resource: " + r.Type,
			Collection:  "Account Resources",
			Source:      AssetSourceResources,
		})
		n++
	}

	if indexErr != nil && resErr != nil {
		return nil, errors.Join(indexErr, resErr)
	}
	return assets, nil
}

func isTokenResource(typ string) bool {
	for _, m := range tokenResourceMarkers {
		if strings.Contains(typ, m) {
			return true
		}
	}
	return false
}
