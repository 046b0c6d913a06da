package shared

// Asynq task types
const (
	TypeRecordActivity = "activity:record"
	TypeOverdueScan    = "lending:overdue_scan"
)

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Cache keys. Everything under CacheKeyDashboardPrefix is dropped after any
// book, member or loan mutation.
const (
	CacheKeyDashboardPrefix  = "dashboard:"
	CacheKeyDashboardPattern = "dashboard:*"
	CacheKeyCounters         = "dashboard:counters"
	CacheKeyRecentActivity   = "dashboard:recent:%d"
	CacheKeyOverdueSummary   = "lending:overdue_summary"
	CacheKeyFailedLogin      = "auth:failed:%s"
)

// Context keys set by middleware
const (
	ContextRequestID = "request_id"
	ContextUsername  = "username"
	ContextRole      = "role"
)

// RoleAdmin is the only role the API issues.
const RoleAdmin = "admin"
