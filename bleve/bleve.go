// Package bleve searches named addresses by words of their names, for
// queries the fuzzy matcher of package db ranks poorly, such as a word
// from the middle of a name.
package bleve

import (
	"fmt"

	"github.com/tranvictor/kiosk/db"
)

// GetAddress returns the best hit for input.
func (bleveDB *BleveDB) GetAddress(input string) (db.AddressDesc, error) {
	results, _, err := bleveDB.Search(input)
	if err != nil {
		return db.AddressDesc{}, err
	}
	if len(results) == 0 {
		return db.AddressDesc{}, fmt.Errorf("'%s': %w", input, db.ErrAddressNotFound)
	}
	return results[0], nil
}
