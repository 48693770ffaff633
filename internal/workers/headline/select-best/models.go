// internal/workers/headline/select-best/models.go
package selectbest

type Input struct {
	Candidates []string
}

type Output struct {
	Candidates []string `json:"candidates"`
	Best       string   `json:"best"`
}
