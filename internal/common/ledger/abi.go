package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EligibilityABI is the ledger contract interface.
const EligibilityABI = `[
  {"type":"function","name":"submitEncryptedData","stateMutability":"nonpayable",
   "inputs":[
     {"name":"encryptedAge","type":"bytes"},
     {"name":"encryptedRegion","type":"bytes"},
     {"name":"encryptedIncome","type":"bytes"},
     {"name":"encryptedExam","type":"bytes"},
     {"name":"encryptedExtracurricular","type":"bytes"},
     {"name":"encryptedInterview","type":"bytes"}],
   "outputs":[]},
  {"type":"function","name":"hasSubmittedData","stateMutability":"view",
   "inputs":[{"name":"applicant","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getEncryptedEligibility","stateMutability":"view",
   "inputs":[{"name":"applicant","type":"address"}],
   "outputs":[{"name":"","type":"bytes"}]},
  {"type":"function","name":"getApplicationRecord","stateMutability":"view",
   "inputs":[{"name":"applicant","type":"address"}],
   "outputs":[
     {"name":"agePoints","type":"uint8"},
     {"name":"examPoints","type":"uint8"},
     {"name":"incomePoints","type":"uint8"},
     {"name":"extracurricularPoints","type":"uint8"},
     {"name":"interviewPoints","type":"uint8"},
     {"name":"totalPoints","type":"uint8"},
     {"name":"eligible","type":"bool"},
     {"name":"submittedAt","type":"uint64"}]}
]`

// Contract method names.
const (
	MethodSubmit              = "submitEncryptedData"
	MethodHasSubmitted        = "hasSubmittedData"
	MethodGetEncryptedVerdict = "getEncryptedEligibility"
	MethodGetRecord           = "getApplicationRecord"
)

// ParseABI parses EligibilityABI.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(EligibilityABI))
}
