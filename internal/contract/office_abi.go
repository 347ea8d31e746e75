package contract

// Office is the shared office booking system used by the `office` commands.
// Office owners list rooms with an hourly price; bookings pay price × hours
// up front and the payment accrues to the owner's earnings.
//
// Function selectors:
//
//	addOffice(string,uint256)          → 0x9347ed9c
//	bookOffice(uint256,uint256)        → 0xf2dbffae
//	returnOffice(uint256)              → 0xb7041af5
//	withdrawEarnings()                 → 0xb73c6ce9
//	checkOfficeAvailability(uint256)   → 0x9ac9e2cb
//	earnings(address)                  → 0x543fd313
func init() {
	RegisterBuiltin(&BuiltinKind{
		ID:          "office",
		Name:        "SharedOfficeBookingSystem",
		Description: "Hourly office rental with owner earnings. Deployed via `w3dapp deploy office`.",
		ABI:         officeABI,
	})
}

const officeABI = `[
  {"type":"function","name":"addOffice","stateMutability":"nonpayable",
   "inputs":[{"name":"_name","type":"string"},{"name":"_pricePerHour","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"bookOffice","stateMutability":"payable",
   "inputs":[{"name":"_officeId","type":"uint256"},{"name":"_hours","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"returnOffice","stateMutability":"nonpayable",
   "inputs":[{"name":"_officeId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawEarnings","stateMutability":"nonpayable",
   "inputs":[],"outputs":[]},
  {"type":"function","name":"checkOfficeAvailability","stateMutability":"view",
   "inputs":[{"name":"_officeId","type":"uint256"}],
   "outputs":[{"name":"name","type":"string"},{"name":"isBooked","type":"bool"},
              {"name":"pricePerHour","type":"uint256"},{"name":"owner","type":"address"}]},
  {"type":"function","name":"earnings","stateMutability":"view",
   "inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`
