package domain

// Algorithm names advertised in the envelope header.
const (
	KeyAlgorithm     = "RSA-OAEP-256"
	ContentAlgorithm = "A256CBC-HS512"
)

// Header is the first segment of a sealed envelope.
type Header struct {
	Algorithm  string `json:"alg"`
	Encryption string `json:"enc"`
	KeyID      string `json:"kid"`
}
