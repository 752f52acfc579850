package domain

// ContractFilter contains filtering/pagination parameters for contract listings.
type ContractFilter struct {
	Status   *ContractStatus
	Decision *RenewalDecision
	Limit    int
	Offset   int
}
