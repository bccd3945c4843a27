package core

import "github.com/kevinelliott/agentcore/pkg/coreid"

func parseOperationID(operationID string) (coreid.ID, error) {
	return coreid.Parse(operationID)
}
