package orders

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusExpired Status = "EXPIRED"
)

// PENDING satu-satunya state non-terminal. Siapa pun yang menang duluan
// (webhook atau sweep) menang; transisi dari state terminal tidak ada.
var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusSuccess: true, StatusFailed: true, StatusExpired: true},
	StatusSuccess: {},
	StatusFailed:  {},
	StatusExpired: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func Terminal(s Status) bool {
	return KnownStatus(s) && s != StatusPending
}

func KnownStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}
