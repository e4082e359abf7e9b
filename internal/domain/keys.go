package domain

import "fmt"

// Storage key layout. Executions are keyed under their workflow so the run
// history of one workflow is a single prefix scan.

const (
	workflowKeyPrefix  = "workflow:def:"
	executionKeyPrefix = "execution:"
)

func WorkflowKey(workflowID string) string {
	return workflowKeyPrefix + workflowID
}

func WorkflowKeyPrefix() string {
	return workflowKeyPrefix
}

func ExecutionKey(recordID string) string {
	return executionKeyPrefix + recordID
}

func ExecutionIndexKey(workflowID, recordID string) string {
	return fmt.Sprintf("execution-index:%s:%s", workflowID, recordID)
}

func ExecutionIndexPrefix(workflowID string) string {
	return fmt.Sprintf("execution-index:%s:", workflowID)
}
