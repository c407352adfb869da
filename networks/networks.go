package networks

import (
	"sync"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// NetworkString is the name CurrentNetwork resolves, set from --network.
var NetworkString string = "devnet"

func CurrentNetwork() Network {
	mu.Lock()
	current := cachedNetwork
	mu.Unlock()
	if current != nil {
		return current
	}
	SetNetwork(NetworkString)
	return CurrentNetwork()
}

// SetNetwork switches the current network. Unknown names fall back to
// devnet and the error says so.
func SetNetwork(networkStr string) error {
	mu.Lock()
	defer mu.Unlock()

	n, err := GetNetwork(networkStr)
	if err != nil {
		cachedNetwork = Devnet
		return err
	}
	cachedNetwork = n
	return nil
}
