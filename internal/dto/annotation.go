package dto

// ── 批注模块 DTO ──

// SaveAnnotationRequest 保存批注请求
// SnapshotVersion 为客户端最后读到的批注版本号；0 表示读取时批注尚不存在。
// 与远端当前版本不一致即为陈旧写入，除非 Force 为 true 才允许覆盖。
type SaveAnnotationRequest struct {
	Content         string `json:"content"`
	SnapshotVersion int    `json:"snapshot_version" binding:"min=0"`
	Force           bool   `json:"force"`
}

// AnnotationResponse 批注响应
type AnnotationResponse struct {
	ID         string `json:"id"`
	ReportID   string `json:"report_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
	Version    int    `json:"version"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// AnnotationStateResponse 批注轮询响应
// Changed 表示远端版本已超过调用方携带的 known_version
type AnnotationStateResponse struct {
	Annotation *AnnotationResponse `json:"annotation"`
	Changed    bool                `json:"changed"`
}

// EditLockInfoResponse 编辑锁持有者信息
type EditLockInfoResponse struct {
	HolderID   string `json:"holder_id"`
	HolderName string `json:"holder_name"`
	AcquiredAt string `json:"acquired_at"`
}
