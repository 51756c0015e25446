package collect

import (
	"github.com/RecoveryAshes/webmirror/internal/models"
)

// RefQueue 待下载引用队列
// 职责: 管理待处理引用(FIFO)和已见URL集合,支持在遍历过程中追加新发现的引用
// (CSS二级资源在下载过程中陆续产生,队列随自身的消费而增长)
//
// 整条流水线单goroutine顺序执行,队列由下载引擎独占,无需加锁
type RefQueue struct {
	// 待处理引用(FIFO)
	pending []models.ResourceReference

	// 已入队URL标记集合(以解析后的绝对URL为键)
	seen map[string]struct{}
}

// NewRefQueue 创建引用队列
func NewRefQueue() *RefQueue {
	return &RefQueue{
		pending: make([]models.ResourceReference, 0),
		seen:    make(map[string]struct{}),
	}
}

// Push 添加引用到队尾
// 同一解析后URL只会入队一次; 返回是否实际入队
func (q *RefQueue) Push(ref models.ResourceReference) bool {
	if _, ok := q.seen[ref.ResolvedURL]; ok {
		return false
	}
	q.seen[ref.ResolvedURL] = struct{}{}
	q.pending = append(q.pending, ref)
	return true
}

// Pop 取出队首引用
// 队列为空时第二个返回值为false
func (q *RefQueue) Pop() (models.ResourceReference, bool) {
	if len(q.pending) == 0 {
		return models.ResourceReference{}, false
	}
	ref := q.pending[0]
	q.pending = q.pending[1:]
	return ref, true
}

// Seen 检查URL是否已入队过
func (q *RefQueue) Seen(resolvedURL string) bool {
	_, ok := q.seen[resolvedURL]
	return ok
}

// PendingCount 当前待处理引用数量
func (q *RefQueue) PendingCount() int {
	return len(q.pending)
}

// SeenCount 已见过的URL总数(含已处理)
func (q *RefQueue) SeenCount() int {
	return len(q.seen)
}
