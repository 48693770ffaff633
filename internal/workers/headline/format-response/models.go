// internal/workers/headline/format-response/models.go
package formatresponse

type Input struct {
	Candidates []string
	Best       string
	Topic      string
}
