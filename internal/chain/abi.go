package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// GuestBookABI covers the guestbook entry and todo methods of the deployed
// GuestBook contract.
const GuestBookABI = `[
	{"anonymous":false,"inputs":[
		{"indexed":true,"internalType":"address","name":"sender","type":"address"},
		{"indexed":false,"internalType":"string","name":"name","type":"string"},
		{"indexed":false,"internalType":"string","name":"message","type":"string"}],
	 "name":"NewMessage","type":"event"},
	{"inputs":[{"internalType":"string","name":"_name","type":"string"},{"internalType":"string","name":"_message","type":"string"}],
	 "name":"postMessage","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"index","type":"uint256"}],
	 "name":"getMessage","outputs":[
		{"internalType":"address","name":"sender","type":"address"},
		{"internalType":"string","name":"name","type":"string"},
		{"internalType":"string","name":"message","type":"string"},
		{"internalType":"uint256","name":"timestamp","type":"uint256"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getTotalMessages","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"_title","type":"string"},{"internalType":"string","name":"_description","type":"string"}],
	 "name":"createTodo","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[],"name":"todoCounter","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[],"name":"todoCreationFee","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
	 "stateMutability":"view","type":"function"},
	{"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],
	 "stateMutability":"view","type":"function"}
]`

// FluidPayABI covers the payable sendMessage method of the payments contract.
const FluidPayABI = `[
	{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"string","name":"message","type":"string"}],
	 "name":"sendMessage","outputs":[],"stateMutability":"payable","type":"function"}
]`

// Contract method names.
const (
	methodPostMessage      = "postMessage"
	methodCreateTodo       = "createTodo"
	methodSendMessage      = "sendMessage"
	methodGetMessage       = "getMessage"
	methodGetTotalMessages = "getTotalMessages"
	methodTodoCounter      = "todoCounter"
	methodTodoCreationFee  = "todoCreationFee"
)

func parseABI(name, raw string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse %s ABI: %w", name, err)
	}
	return parsed, nil
}
