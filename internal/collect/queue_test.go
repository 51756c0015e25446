package collect

import (
	"fmt"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

func makeRef(resolvedURL string) models.ResourceReference {
	return models.ResourceReference{
		RawURL:      resolvedURL,
		ResolvedURL: resolvedURL,
		Type:        ClassifyURL(resolvedURL),
		Source:      models.SourceHTML,
	}
}

func TestRefQueueFIFO(t *testing.T) {
	q := NewRefQueue()

	urls := []string{
		"https://example.com/a.css",
		"https://example.com/b.js",
		"https://example.com/c.png",
	}
	for _, u := range urls {
		if !q.Push(makeRef(u)) {
			t.Errorf("首次入队应成功: %s", u)
		}
	}

	if q.PendingCount() != 3 {
		t.Errorf("待处理数量错误: 期望 3, 得到 %d", q.PendingCount())
	}

	// 出队顺序与入队顺序一致
	for _, want := range urls {
		ref, ok := q.Pop()
		if !ok {
			t.Fatalf("出队失败, 期望 %s", want)
		}
		if ref.ResolvedURL != want {
			t.Errorf("出队顺序错误: 期望 %s, 得到 %s", want, ref.ResolvedURL)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("空队列出队应返回false")
	}
}

func TestRefQueueDeduplicates(t *testing.T) {
	q := NewRefQueue()

	ref := makeRef("https://example.com/same.css")
	if !q.Push(ref) {
		t.Fatal("首次入队应成功")
	}
	if q.Push(ref) {
		t.Error("重复入队应被拒绝")
	}

	// 出队后同一URL仍视为已见,不允许重新入队
	q.Pop()
	if q.Push(ref) {
		t.Error("已处理URL重新入队应被拒绝")
	}
	if !q.Seen("https://example.com/same.css") {
		t.Error("已处理URL应保持已见状态")
	}

	if q.SeenCount() != 1 {
		t.Errorf("已见数量错误: 期望 1, 得到 %d", q.SeenCount())
	}
}

func TestRefQueueGrowsDuringDrain(t *testing.T) {
	// 处理过程中发现的新引用(如CSS二级资源)可以继续入队
	q := NewRefQueue()
	q.Push(makeRef("https://example.com/main.css"))

	processed := make([]string, 0)
	for {
		ref, ok := q.Pop()
		if !ok {
			break
		}
		processed = append(processed, ref.ResolvedURL)

		// 模拟从main.css中发现两条二级引用
		if ref.ResolvedURL == "https://example.com/main.css" {
			for i := 0; i < 2; i++ {
				q.Push(makeRef(fmt.Sprintf("https://example.com/found%d.png", i)))
			}
		}
	}

	if len(processed) != 3 {
		t.Errorf("期望处理3条引用, 得到 %d: %v", len(processed), processed)
	}
}
