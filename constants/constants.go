package constants

import "github.com/ethereum/go-ethereum/common"

const MAINNET_API_URL = "https://pro.edgex.exchange"
const TESTNET_API_URL = "https://testnet.edgex.exchange"

const MAINNET_WS_URL = "wss://quote.edgex.exchange"
const TESTNET_WS_URL = "wss://quote-testnet.edgex.exchange"

// SUCCESS_CODE is the literal the gateway puts in "code" when a request was
// accepted. Anything else is an application level rejection.
const SUCCESS_CODE = "SUCCESS"

var ZERO_ADDRESS = common.Address{}
