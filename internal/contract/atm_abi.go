package contract

// ATM is the single-account deposit box used by the `atm` commands.
//
// Function selectors:
//
//	deposit(uint256)  → 0xb6b55f25
//	withdraw(uint256) → 0x2e1a7d4d
//	getBalance()      → 0x12065fe0
func init() {
	RegisterBuiltin(&BuiltinKind{
		ID:          "atm",
		Name:        "Assessment",
		Description: "Owner-only balance ledger with deposit and withdraw.",
		ABI:         atmABI,
	})
}

const atmABI = `[
  {"type":"function","name":"deposit","stateMutability":"payable",
   "inputs":[{"name":"_amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable",
   "inputs":[{"name":"_withdrawAmount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getBalance","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"event","name":"Deposit","anonymous":false,
   "inputs":[{"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Withdraw","anonymous":false,
   "inputs":[{"name":"amount","type":"uint256","indexed":false}]}
]`
