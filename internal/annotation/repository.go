package annotation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/transport"
)

// Repository 按任务形态参数化的通用标注仓库，作用域为 (projectID, exampleID)
// 所有 CRUD 动词只实现一次，形态差异全部来自 Shape。
// 不做重试，也不提供取消回滚：被放弃的 Create 仍可能已在服务端持久化，
// 调用方应在下一次 List 时对账。
type Repository[T Annotation] struct {
	tr    transport.Transport
	shape Shape[T]
}

// NewRepository 创建仓库
func NewRepository[T Annotation](tr transport.Transport, shape Shape[T]) *Repository[T] {
	return &Repository[T]{tr: tr, shape: shape}
}

// Shape 返回仓库的任务形态
func (r *Repository[T]) Shape() Shape[T] {
	return r.shape
}

// List 列出 Example 下的全部标注；任一记录解码失败即整体失败，不静默丢弃
func (r *Repository[T]) List(ctx context.Context, projectID, exampleID int64) ([]T, error) {
	data, err := r.tr.Do(ctx, http.MethodGet, r.shape.Path(projectID, exampleID), nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []T{}, nil
	}
	recs, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", r.shape.Fragment, err)
	}

	items := make([]T, 0, len(recs))
	for i, rec := range recs {
		item, err := r.shape.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s[%d]: %w", r.shape.Fragment, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Create 创建标注，要求 ID 为 0；返回带服务端 ID 的新实例
// 写请求期间 a 处于 pending 状态。
func (r *Repository[T]) Create(ctx context.Context, projectID, exampleID int64, a T) (T, error) {
	var zero T
	meta := a.Meta()
	if !meta.IsNew() {
		return zero, errs.InvalidArgument("create requires id 0, got %d", meta.ID)
	}
	if r.shape.Check != nil {
		if err := r.shape.Check(a); err != nil {
			return zero, err
		}
	}
	if err := meta.BeginWrite(); err != nil {
		return zero, err
	}

	body := r.shape.Encode(a)
	delete(body, "id")

	created, err := r.send(ctx, http.MethodPost, r.shape.Path(projectID, exampleID), body)
	meta.EndWrite(err == nil)
	if err != nil {
		return zero, err
	}
	if created.Meta().IsNew() {
		return zero, errs.Decode(string(r.shape.Kind), "id", "server returned no id")
	}
	return created, nil
}

// Update 部分更新；id 不存在时返回 ErrNotFound
func (r *Repository[T]) Update(ctx context.Context, projectID, exampleID, id int64, patch Patch) (T, error) {
	var zero T
	if id == 0 {
		return zero, errs.InvalidArgument("update requires a persisted id")
	}
	if len(patch) == 0 {
		return zero, errs.InvalidArgument("empty patch")
	}
	return r.send(ctx, http.MethodPatch, r.shape.ItemPath(projectID, exampleID, id), Record(patch))
}

// Apply 对已持久化的标注发送部分更新，写请求期间 a 处于 pending 状态
func (r *Repository[T]) Apply(ctx context.Context, projectID, exampleID int64, a T, patch Patch) (T, error) {
	var zero T
	meta := a.Meta()
	if err := meta.BeginWrite(); err != nil {
		return zero, err
	}
	updated, err := r.Update(ctx, projectID, exampleID, meta.ID, patch)
	meta.EndWrite(err == nil)
	return updated, err
}

// Delete 删除标注；已删除的 ID 视为成功
func (r *Repository[T]) Delete(ctx context.Context, projectID, exampleID, id int64) error {
	_, err := r.tr.Do(ctx, http.MethodDelete, r.shape.ItemPath(projectID, exampleID, id), nil)
	return ignoreNotFound(err)
}

// BulkDelete 批量删除；空列表不发请求
func (r *Repository[T]) BulkDelete(ctx context.Context, projectID, exampleID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.tr.Do(ctx, http.MethodDelete, r.shape.Path(projectID, exampleID), map[string]any{"ids": ids})
	return ignoreNotFound(err)
}

// Clear 删除 Example 下该形态的全部标注（切换标签集时使用）
func (r *Repository[T]) Clear(ctx context.Context, projectID, exampleID int64) error {
	_, err := r.tr.Do(ctx, http.MethodDelete, r.shape.Path(projectID, exampleID), nil)
	return ignoreNotFound(err)
}

func (r *Repository[T]) send(ctx context.Context, method, path string, body Record) (T, error) {
	var zero T
	data, err := r.tr.Do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	if data == nil {
		return zero, errs.Decode(string(r.shape.Kind), "id", "empty response")
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s response: %w", r.shape.Fragment, err)
	}
	item, err := r.shape.Decode(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s response: %w", r.shape.Fragment, err)
	}
	return item, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	return err
}
