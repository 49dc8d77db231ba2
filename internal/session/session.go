package session

import (
	"fmt"

	"sps-logbook/internal/model"
)

// Page 会话可见页面
type Page string

const (
	PageEntry  Page = "entry"
	PageReport Page = "report"
	PageUsers  Page = "users" // 仅管理员
)

// ParsePage 解析页面名
func ParsePage(s string) (Page, error) {
	switch p := Page(s); p {
	case PageEntry, PageReport, PageUsers:
		return p, nil
	}
	return "", fmt.Errorf("未知页面 %q", s)
}

// Session 已认证会话：身份来自 Token，生命周期内不变
type Session struct {
	ID          string
	Username    string
	AccessClass model.AccessClass
	IsAdmin     bool
}

// AllowedPages 该会话可访问的页面
// entry 固定录入页，report 固定报表页，both 可在两者间切换，管理员额外可见用户页
func (s *Session) AllowedPages() []Page {
	var pages []Page
	if s.AccessClass.CanEnter() {
		pages = append(pages, PageEntry)
	}
	if s.AccessClass.CanReport() {
		pages = append(pages, PageReport)
	}
	if s.IsAdmin {
		pages = append(pages, PageUsers)
	}
	return pages
}

// CanAccess 是否可访问页面
func (s *Session) CanAccess(p Page) bool {
	for _, allowed := range s.AllowedPages() {
		if allowed == p {
			return true
		}
	}
	return false
}

// DefaultPage 登录后的初始页面：有录入权限时为录入页
func (s *Session) DefaultPage() Page {
	if s.AccessClass.CanEnter() {
		return PageEntry
	}
	return PageReport
}

// ActivePage 当前生效页面，状态中记录的页面不再允许时回退默认页
func (s *Session) ActivePage(st *State) Page {
	if st != nil && st.ActivePage != "" && s.CanAccess(st.ActivePage) {
		return st.ActivePage
	}
	return s.DefaultPage()
}

// Toggle both 类别在录入页与报表页之间切换，其余类别保持不变
func (s *Session) Toggle(current Page) Page {
	if s.AccessClass != model.AccessBoth {
		return s.DefaultPage()
	}
	if current == PageEntry {
		return PageReport
	}
	return PageEntry
}
