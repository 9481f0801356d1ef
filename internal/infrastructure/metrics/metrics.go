package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the "result" label.
const (
	AppRequests       = "app_requests_total"
	UserCreated       = "user_created_total"
	UserUpdated       = "user_updated_total"
	UserDeleted       = "user_deleted_total"
	KeyProvisioned    = "key_provisioned_total"
	FileShared        = "file_shared_total"
	FileRejected      = "file_rejected_total"
	FileRetrieved     = "file_retrieved_total"
	RetrievalDenied   = "retrieval_denied_total"
	FilePurged        = "file_purged_total"
	JanitorRunFailed  = "janitor_run_failed_total"
	BlobRemovalFailed = "blob_removal_failed_total"
)

func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "general_counters",
		},
		[]string{"result"})
}
