package ledger

import "github.com/algorand/go-algorand-sdk/v2/crypto"

// Storage order contract surface.
const (
	MethodGetPrice           = "getPrice(uint64,bool)uint64"
	MethodGetRandomOrderNode = "getRandomOrderNode()address"
	MethodPlaceOrder         = "placeOrder(pay,string,uint64,bool,address)void"

	// NodesBox is the box holding the registered storage nodes.
	NodesBox = "nodes"
)

// ApplicationAddress returns the custodial account of application appID,
// which receives escrow payments.
func ApplicationAddress(appID uint64) string {
	return crypto.GetApplicationAddress(appID).String()
}
