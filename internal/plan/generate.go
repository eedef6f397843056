// Package plan builds the operation lists a batch run submits. Operations come
// from three places: templated generators for demo and load runs, plan files
// read with viper, and JSON operation specs posted to the daemon API.
package plan

import (
	"fmt"
	"math/big"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/config"
)

// Run modes accepted by Composite.
const (
	ModeMessages = "messages"
	ModeTodos    = "todos"
	ModeBoth     = "both"
)

var names = []string{
	"Alice", "Bob", "Charlie", "Diana", "Eve",
	"Frank", "Grace", "Henry", "Ivy", "Jack",
	"Kate", "Leo", "Mia", "Noah", "Olivia",
	"Peter", "Quinn", "Ruby", "Sam", "Tara",
}

var greetings = []string{
	"Hello from the blockchain!",
	"Web3 is amazing!",
	"Decentralization rocks!",
	"Building the future, one block at a time.",
	"Love this guestbook dApp!",
	"Greetings from the Base network!",
	"Smart contracts are revolutionary.",
	"Happy to be part of this community!",
	"Blockchain technology is the future.",
	"Thanks for building this awesome dApp!",
	"Exploring the decentralized web.",
	"On-chain forever!",
	"The future is trustless and permissionless.",
	"Excited about Web3 development!",
	"Learning and building every day.",
}

var todoTitles = []string{
	"Learn Solidity basics",
	"Build a DeFi protocol",
	"Deploy to mainnet",
	"Write comprehensive tests",
	"Optimize gas usage",
	"Implement ERC-721 NFT",
	"Create DAO governance",
	"Audit smart contracts",
	"Integrate with frontend",
	"Study Layer 2 solutions",
	"Master Web3.js and Ethers.js",
	"Build a decentralized exchange",
	"Create tokenomics model",
	"Implement multisig wallet",
	"Learn about MEV protection",
}

var todoDescriptions = []string{
	"Master the fundamentals of smart contract development with Solidity.",
	"Explore decentralized finance by building lending and staking protocols.",
	"Successfully deploy the project to Ethereum mainnet with proper testing.",
	"Achieve 100% code coverage with unit and integration tests.",
	"Reduce transaction costs by implementing gas optimization techniques.",
	"Create a unique NFT collection with metadata and royalties.",
	"Build a decentralized autonomous organization with token voting.",
	"Conduct thorough security audits to prevent vulnerabilities.",
	"Connect smart contracts to React frontend using Wagmi and Web3Modal.",
	"Research and implement solutions like Optimism or Arbitrum for scalability.",
	"Become proficient in Web3 libraries for blockchain interactions.",
	"Design and implement an automated market maker with liquidity pools.",
	"Develop sustainable token economics with proper distribution and incentives.",
	"Create a secure multi-signature wallet for team fund management.",
	"Understand and protect against miner extractable value attacks.",
}

var noteBeginnings = []string{
	"Hey dev! Your smart contract skills are improving every day.",
	"Great work on mastering Solidity fundamentals!",
	"I appreciate how you help others debug their code.",
	"Your understanding of gas optimization is really solid.",
	"Keep pushing forward - blockchain development takes patience.",
	"The way you explained ERC-20 tokens was incredibly clear.",
	"Your test coverage on that last project was impressive.",
	"Remember: every error message is a learning opportunity.",
	"You're building the decentralized future, one line at a time.",
	"Your contributions to our class discussions are valuable.",
}

var noteMiddles = []string{
	"Never stop experimenting with new protocols and patterns.",
	"Security-first thinking will make you an exceptional developer.",
	"Your willingness to ask questions shows real growth mindset.",
	"The blockchain community needs more developers like you.",
	"Every transaction you write teaches you something new.",
	"Your persistence through complex bugs is truly admirable.",
	"Keep exploring DeFi, NFTs, and DAOs - you're doing great.",
	"Testing on testnets before mainnet shows you're thinking smart.",
	"Your code reviews help everyone write better contracts.",
	"Documentation matters - thanks for writing clear comments.",
}

var noteEndings = []string{
	"Excited to see what you build next!",
	"Keep coding, keep learning, keep shipping.",
	"You're going to do amazing things in Web3.",
	"This message is permanently on-chain for you.",
	"Proud to be learning alongside you.",
	"Your future in blockchain is bright!",
	"Can't wait to see your next deployment.",
	"You're leveling up with every commit.",
	"The best developers never stop learning.",
	"Onwards and upwards, fellow builder!",
}

// DefaultRecipients are the payment recipients cycled by Payments when the
// caller supplies none.
var DefaultRecipients = []string{
	"0x51F19F71e9d073AAB39f6fd003F424984390E5A0",
	"0xC9b1E7DBE24E29D1F9a917Ea24697C704ABBFeE0",
	"0x7273dE585311a5139Ef83f0F6Dbb29F3e57b3389",
	"0xEfd50EC809f87393b87513f207DaddEb80C0491F",
}

// Messages generates n templated guestbook entries.
func Messages(n int) []batching.Operation {
	ops := make([]batching.Operation, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, batching.NewPostMessage(
			fmt.Sprintf("%s #%d", names[i%len(names)], i+1),
			fmt.Sprintf("%s (Message #%d)", greetings[i%len(greetings)], i+1),
			config.DefaultMessageGasLimit,
		))
	}
	return ops
}

// Todos generates n templated todos, each paying fee.
func Todos(n int, fee *big.Int) []batching.Operation {
	ops := make([]batching.Operation, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, batching.NewCreateTodo(
			fmt.Sprintf("%s #%d", todoTitles[i%len(todoTitles)], i+1),
			todoDescriptions[i%len(todoDescriptions)],
			fee,
			config.DefaultTodoGasLimit,
		))
	}
	return ops
}

// Payments generates n payments of amount wei, cycling through recipients.
// An empty recipient list selects DefaultRecipients.
func Payments(n int, recipients []string, amount *big.Int) []batching.Operation {
	if len(recipients) == 0 {
		recipients = DefaultRecipients
	}

	ops := make([]batching.Operation, 0, n)
	for i := 0; i < n; i++ {
		note := fmt.Sprintf("%s %s %s (Message #%d)",
			noteBeginnings[i%len(noteBeginnings)],
			noteMiddles[i%len(noteMiddles)],
			noteEndings[i%len(noteEndings)],
			i+1)
		ops = append(ops, batching.NewSendPayment(
			recipients[i%len(recipients)],
			amount,
			note,
			config.DefaultPaymentGasLimit,
		))
	}
	return ops
}

// Composite builds the ordered groups for a run mode. Messages run before
// todos in "both" mode.
func Composite(mode string, numMessages, numTodos int, fee *big.Int) ([][]batching.Operation, error) {
	switch mode {
	case ModeMessages:
		return [][]batching.Operation{Messages(numMessages)}, nil
	case ModeTodos:
		return [][]batching.Operation{Todos(numTodos, fee)}, nil
	case ModeBoth:
		return [][]batching.Operation{Messages(numMessages), Todos(numTodos, fee)}, nil
	default:
		return nil, fmt.Errorf("unknown operation mode '%s' (valid: %s, %s, %s)",
			mode, ModeMessages, ModeTodos, ModeBoth)
	}
}
