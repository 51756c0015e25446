package collect

import (
	"reflect"
	"testing"
)

func TestExtractCSS(t *testing.T) {
	css := `
@import "reset.css";
body {
	background: url(bg.png);
	cursor: url("cursor.cur"), auto;
}
@font-face {
	src: url('fonts/a.woff2') format("woff2");
}
`
	want := []string{"reset.css", "bg.png", "cursor.cur", "fonts/a.woff2"}
	got := ExtractCSS(css)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CSS引用提取错误: 期望 %v, 得到 %v", want, got)
	}
}

func TestExtractCSSImportForms(t *testing.T) {
	// @import 的裸字符串和url()两种形式都要识别
	css := `
@import "a.css";
@import url("b.css");
@import url(c.css);
@import 'd.css' screen;
`
	want := []string{"a.css", "b.css", "c.css", "d.css"}
	got := ExtractCSS(css)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("@import提取错误: 期望 %v, 得到 %v", want, got)
	}
}

func TestExtractCSSExactRefs(t *testing.T) {
	// 一条@import加一条url()恰好产出两条引用,无多余无遗漏
	css := `@import "foo.css"; body { background: url(bar.png); }`

	got := ExtractCSS(css)
	want := []string{"foo.css", "bar.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望恰好两条引用 %v, 得到 %v", want, got)
	}
}

func TestExtractCSSSkipsDataURI(t *testing.T) {
	css := `
.icon { background: url(data:image/png;base64,iVBORw0KGgo=); }
.icon2 { background: url(DATA:image/gif;base64,R0lGOD); }
.real { background: url(real.png); }
`
	got := ExtractCSS(css)
	want := []string{"real.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("data:URI应被跳过: 期望 %v, 得到 %v", want, got)
	}
}

func TestExtractCSSDeduplicates(t *testing.T) {
	css := `
.a { background: url(same.png); }
.b { background: url("same.png"); }
.c { background: url('same.png'); }
`
	got := ExtractCSS(css)
	if len(got) != 1 || got[0] != "same.png" {
		t.Errorf("重复引用应去重: 得到 %v", got)
	}
}

func TestExtractCSSMalformed(t *testing.T) {
	// 畸形CSS不应panic,尽力提取
	malformed := []string{
		"",
		"body { background: url( }",
		"@import ;",
		"url()",
		"完全不是CSS的内容 {{{",
	}

	for _, css := range malformed {
		got := ExtractCSS(css)
		if got == nil {
			t.Errorf("期望空切片而非nil: %q", css)
		}
		if len(got) != 0 {
			t.Errorf("畸形CSS不应产出引用: %q -> %v", css, got)
		}
	}
}
