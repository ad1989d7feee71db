package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harubang/fengshui-site/content"
)

// renderAdminPage renders a back-office page inside the admin layout
func (s *Server) renderAdminPage(w http.ResponseWriter, r *http.Request, activePage, pageTitle, contentTemplate string, pageContent any) {
	contentTmpl, err := ParseTemplate(contentTemplate)
	if err != nil {
		http.Error(w, "Failed to load content template", http.StatusInternalServerError)
		return
	}

	var contentBuf strings.Builder
	if err := contentTmpl.Execute(&contentBuf, pageContent); err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("Failed to render admin content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := ParseTemplate("admin_layout.html")
	if err != nil {
		http.Error(w, "Failed to load layout template", http.StatusInternalServerError)
		return
	}

	userName := ""
	if user := s.currentUser(r); user != nil {
		userName = user.Email
	}

	data := map[string]interface{}{
		"AppName":    s.config.GetAppName(),
		"UserName":   userName,
		"ActivePage": activePage,
		"PageTitle":  pageTitle,
		"Error":      r.URL.Query().Get("error"),
		"Content":    template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	_ = layoutTmpl.Execute(w, data)
}

// DashboardCounts summarizes the content stores for the admin landing page.
type DashboardCounts struct {
	Posts          int
	Notices        int
	Questions      int
	PendingReviews int
	Profiles       int
}

// AdminDashboardHandler renders the admin dashboard
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		ctx := r.Context()
		counts := DashboardCounts{}
		counts.Posts, _ = client.Posts.Count(ctx, false)
		counts.Notices, _ = client.Notices.Count(ctx)
		counts.Questions, _ = client.Questions.Count(ctx)
		counts.Profiles, _ = client.Profiles.Count(ctx)

		total, _ := client.Reviews.Count(ctx, false)
		approved, _ := client.Reviews.Count(ctx, true)
		counts.PendingReviews = total - approved

		s.renderAdminPage(w, r, "dashboard", "Dashboard", "admin_dashboard_content.html", counts)
	}
}

// AdminPostsListHandler lists all posts, drafts included
func (s *Server) AdminPostsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		posts, err := client.Posts.List(r.Context(), content.PostListOptions{Offset: pageOffset(r), Limit: pageSize})
		if err != nil {
			log.Err(err).Msg("Failed to list posts")
			http.Error(w, "Failed to load posts", http.StatusInternalServerError)
			return
		}
		s.renderAdminPage(w, r, "posts", "Posts", "admin_posts_content.html", posts)
	}
}

// AdminPostFormHandler renders the new/edit post form
func (s *Server) AdminPostFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		post := &content.Post{}
		if id := r.PathValue("id"); id != "" {
			existing, err := client.Posts.GetByID(r.Context(), id)
			if err != nil {
				http.Error(w, "404 - Page Not Found", http.StatusNotFound)
				return
			}
			post = existing
		}
		s.renderAdminPage(w, r, "posts", "Edit Post", "admin_post_form_content.html", post)
	}
}

// AdminPostSaveHandler creates or updates a post from form data
func (s *Server) AdminPostSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		now := time.Now()
		post := &content.Post{
			ID:        r.PathValue("id"),
			UpdatedAt: now,
		}
		if post.ID == "" {
			post.ID = uuid.NewString()
			post.CreatedAt = now
		} else {
			existing, err := client.Posts.GetByID(r.Context(), post.ID)
			if err != nil {
				http.Error(w, "404 - Page Not Found", http.StatusNotFound)
				return
			}
			post.CreatedAt = existing.CreatedAt
			post.Published = existing.Published
			post.AuthorID = existing.AuthorID
		}

		post.Title = r.FormValue("title")
		post.Body = r.FormValue("body")
		post.CoverImage = r.FormValue("cover_image")
		post.Slug = r.FormValue("slug")
		if post.Slug == "" {
			post.Slug = content.Slugify(post.Title)
		}
		if post.AuthorID == "" {
			post.AuthorID, _ = r.Context().Value(ContextKeyUserID).(string)
		}

		if post.Title == "" || post.Body == "" {
			redirectWithError(w, r, RouteAdminPosts, "Title and body are required")
			return
		}

		if err := client.Posts.Upsert(r.Context(), post); err != nil {
			log.Err(err).Msg("Failed to save post")
			redirectWithError(w, r, RouteAdminPosts, "Failed to save post")
			return
		}
		redirectSuccess(w, r, RouteAdminPosts)
	}
}

// AdminPostPublishHandler toggles a post's published flag
func (s *Server) AdminPostPublishHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		post, err := client.Posts.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		post.Published = !post.Published
		post.UpdatedAt = time.Now()
		if err := client.Posts.Upsert(r.Context(), post); err != nil {
			log.Err(err).Msg("Failed to update post")
			redirectWithError(w, r, RouteAdminPosts, "Failed to update post")
			return
		}
		redirectSuccess(w, r, RouteAdminPosts)
	}
}

// AdminPostDeleteHandler removes a post
func (s *Server) AdminPostDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := client.Posts.Delete(r.Context(), r.PathValue("id")); err != nil {
			log.Err(err).Msg("Failed to delete post")
			redirectWithError(w, r, RouteAdminPosts, "Failed to delete post")
			return
		}
		redirectSuccess(w, r, RouteAdminPosts)
	}
}

// AdminNoticesListHandler lists all notices
func (s *Server) AdminNoticesListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		notices, err := client.Notices.List(r.Context(), pageOffset(r), pageSize)
		if err != nil {
			log.Err(err).Msg("Failed to list notices")
			http.Error(w, "Failed to load notices", http.StatusInternalServerError)
			return
		}
		s.renderAdminPage(w, r, "notices", "Notices", "admin_notices_content.html", notices)
	}
}

// AdminNoticeFormHandler renders the new/edit notice form
func (s *Server) AdminNoticeFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		notice := &content.Notice{}
		if id := r.PathValue("id"); id != "" {
			existing, err := client.Notices.GetByID(r.Context(), id)
			if err != nil {
				http.Error(w, "404 - Page Not Found", http.StatusNotFound)
				return
			}
			notice = existing
		}
		s.renderAdminPage(w, r, "notices", "Edit Notice", "admin_notice_form_content.html", notice)
	}
}

// AdminNoticeSaveHandler creates or updates a notice from form data
func (s *Server) AdminNoticeSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		now := time.Now()
		notice := &content.Notice{
			ID:        r.PathValue("id"),
			Title:     r.FormValue("title"),
			Body:      r.FormValue("body"),
			Pinned:    r.FormValue("pinned") == "on",
			UpdatedAt: now,
		}
		if notice.ID == "" {
			notice.ID = uuid.NewString()
			notice.CreatedAt = now
		} else {
			existing, err := client.Notices.GetByID(r.Context(), notice.ID)
			if err != nil {
				http.Error(w, "404 - Page Not Found", http.StatusNotFound)
				return
			}
			notice.CreatedAt = existing.CreatedAt
		}

		if notice.Title == "" {
			redirectWithError(w, r, RouteAdminNotices, "Title is required")
			return
		}

		if err := client.Notices.Upsert(r.Context(), notice); err != nil {
			log.Err(err).Msg("Failed to save notice")
			redirectWithError(w, r, RouteAdminNotices, "Failed to save notice")
			return
		}
		redirectSuccess(w, r, RouteAdminNotices)
	}
}

// AdminNoticeDeleteHandler removes a notice
func (s *Server) AdminNoticeDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := client.Notices.Delete(r.Context(), r.PathValue("id")); err != nil {
			log.Err(err).Msg("Failed to delete notice")
			redirectWithError(w, r, RouteAdminNotices, "Failed to delete notice")
			return
		}
		redirectSuccess(w, r, RouteAdminNotices)
	}
}

// AdminQuestionsListHandler lists all questions, private ones included
func (s *Server) AdminQuestionsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		questions, err := client.Questions.List(r.Context(), content.QuestionListOptions{Offset: pageOffset(r), Limit: pageSize})
		if err != nil {
			log.Err(err).Msg("Failed to list questions")
			http.Error(w, "Failed to load questions", http.StatusInternalServerError)
			return
		}
		s.renderAdminPage(w, r, "questions", "Questions", "admin_questions_content.html", questions)
	}
}

// AdminQuestionAnswerHandler records an answer to a question
func (s *Server) AdminQuestionAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		answer := r.FormValue("answer")
		if answer == "" {
			redirectWithError(w, r, RouteAdminQuestions, "Answer is required")
			return
		}

		if err := client.Questions.SetAnswer(r.Context(), r.PathValue("id"), answer, time.Now()); err != nil {
			log.Err(err).Msg("Failed to answer question")
			redirectWithError(w, r, RouteAdminQuestions, "Failed to save answer")
			return
		}
		redirectSuccess(w, r, RouteAdminQuestions)
	}
}

// AdminReviewsListHandler lists all reviews, pending ones included
func (s *Server) AdminReviewsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		reviews, err := client.Reviews.List(r.Context(), content.ReviewListOptions{Offset: pageOffset(r), Limit: pageSize})
		if err != nil {
			log.Err(err).Msg("Failed to list reviews")
			http.Error(w, "Failed to load reviews", http.StatusInternalServerError)
			return
		}
		s.renderAdminPage(w, r, "reviews", "Reviews", "admin_reviews_content.html", reviews)
	}
}

// AdminReviewApproveHandler toggles a review's approved flag
func (s *Server) AdminReviewApproveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		review, err := client.Reviews.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		if err := client.Reviews.SetApproved(r.Context(), review.ID, !review.Approved); err != nil {
			log.Err(err).Msg("Failed to update review")
			redirectWithError(w, r, RouteAdminReviews, "Failed to update review")
			return
		}
		redirectSuccess(w, r, RouteAdminReviews)
	}
}

// AdminReviewDeleteHandler removes a review
func (s *Server) AdminReviewDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		if err := client.Reviews.Delete(r.Context(), r.PathValue("id")); err != nil {
			log.Err(err).Msg("Failed to delete review")
			redirectWithError(w, r, RouteAdminReviews, "Failed to delete review")
			return
		}
		redirectSuccess(w, r, RouteAdminReviews)
	}
}

// AdminUsersListHandler lists registered profiles
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		users, err := client.Profiles.List(r.Context(), pageOffset(r), pageSize)
		if err != nil {
			log.Err(err).Msg("Failed to list profiles")
			http.Error(w, "Failed to load users", http.StatusInternalServerError)
			return
		}
		s.renderAdminPage(w, r, "users", "Users", "admin_users_content.html", users)
	}
}

// AdminUserRoleHandler toggles a profile's admin flag. An admin cannot
// demote itself; that would lock the back office.
func (s *Server) AdminUserRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		id := r.PathValue("id")
		callerID, _ := r.Context().Value(ContextKeyUserID).(string)
		if id == callerID {
			redirectWithError(w, r, RouteAdminUsers, "You cannot change your own role")
			return
		}

		profile, err := client.Profiles.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		if err := client.Profiles.SetAdmin(r.Context(), profile.ID, !profile.IsAdmin); err != nil {
			log.Err(err).Msg("Failed to update role")
			redirectWithError(w, r, RouteAdminUsers, "Failed to update role")
			return
		}
		redirectSuccess(w, r, RouteAdminUsers)
	}
}
