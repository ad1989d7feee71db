package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/content"
)

const pageSize = 20

// PageData is the template model shared by the public pages.
type PageData struct {
	AppName  string
	UserName string
	SignedIn bool
	Error    string

	Posts     []*content.Post
	Post      *content.Post
	Notices   []*content.Notice
	Notice    *content.Notice
	Questions []*content.Question
	Question  *content.Question
	Reviews   []*content.Review
}

func (s *Server) pageData(r *http.Request) PageData {
	data := PageData{
		AppName: s.config.GetAppName(),
		Error:   r.URL.Query().Get("error"),
	}
	if user := s.currentUser(r); user != nil {
		data.SignedIn = true
		data.UserName = user.Email
		if name := user.Metadata["full_name"]; name != "" {
			data.UserName = name
		}
	}
	return data
}

// pageOffset reads the ?page= query parameter as a row offset.
func pageOffset(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		data := s.pageData(r)
		if client := s.backend.Get(); client != nil {
			// Front page shows the latest published articles and notices.
			posts, err := client.Posts.List(r.Context(), content.PostListOptions{Limit: 3, PublishedOnly: true})
			if err == nil {
				data.Posts = posts
			}
			notices, err := client.Notices.List(r.Context(), 0, 3)
			if err == nil {
				data.Notices = notices
			}
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// BlogListHandler lists published posts
func (s *Server) BlogListHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("blog.html")
	if err != nil {
		panic("Failed to parse blog template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		posts, err := client.Posts.List(r.Context(), content.PostListOptions{
			Offset:        pageOffset(r),
			Limit:         pageSize,
			PublishedOnly: true,
		})
		if err != nil {
			log.Err(err).Msg("Failed to list posts")
			http.Error(w, "Failed to load posts", http.StatusInternalServerError)
			return
		}

		data := s.pageData(r)
		data.Posts = posts
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// BlogPostHandler renders one published post by slug
func (s *Server) BlogPostHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("blog_post.html")
	if err != nil {
		panic("Failed to parse blog post template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		post, err := client.Posts.GetBySlug(r.Context(), r.PathValue("slug"))
		if err != nil || !post.Published {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		data := s.pageData(r)
		data.Post = post
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// NoticesHandler lists notices, pinned first
func (s *Server) NoticesHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("notices.html")
	if err != nil {
		panic("Failed to parse notices template: " + err.Error())
	}

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

		data := s.pageData(r)
		data.Notices = notices
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// NoticeHandler renders one notice
func (s *Server) NoticeHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("notice.html")
	if err != nil {
		panic("Failed to parse notice template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		notice, err := client.Notices.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		data := s.pageData(r)
		data.Notice = notice
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// visibleQuestions filters out other users' private questions. Admins see
// everything via the back office instead.
func visibleQuestions(questions []*content.Question, viewer *auth.User) []*content.Question {
	visible := make([]*content.Question, 0, len(questions))
	for _, q := range questions {
		if q.Private && (viewer == nil || viewer.ID != q.AuthorID) {
			continue
		}
		visible = append(visible, q)
	}
	return visible
}

// QnAListHandler lists consultation questions
func (s *Server) QnAListHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("qna.html")
	if err != nil {
		panic("Failed to parse qna template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		questions, err := client.Questions.List(r.Context(), content.QuestionListOptions{
			Offset: pageOffset(r),
			Limit:  pageSize,
		})
		if err != nil {
			log.Err(err).Msg("Failed to list questions")
			http.Error(w, "Failed to load questions", http.StatusInternalServerError)
			return
		}

		data := s.pageData(r)
		data.Questions = visibleQuestions(questions, s.currentUser(r))
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// QnADetailHandler renders one question with its answer, honoring privacy
func (s *Server) QnADetailHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("qna_detail.html")
	if err != nil {
		panic("Failed to parse qna detail template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		question, err := client.Questions.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		if question.Private {
			viewer := s.currentUser(r)
			if viewer == nil || viewer.ID != question.AuthorID {
				http.Error(w, "403 - Forbidden", http.StatusForbidden)
				return
			}
		}

		data := s.pageData(r)
		data.Question = question
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// QnANewHandler renders the question form
func (s *Server) QnANewHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("qna_new.html")
	if err != nil {
		panic("Failed to parse qna form template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		if !data.SignedIn {
			redirectWithError(w, r, RouteLogin, "Sign in to ask a question")
			return
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// QnASubmitHandler stores a new question
func (s *Server) QnASubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		user := s.currentUser(r)
		if user == nil {
			redirectWithError(w, r, RouteLogin, "Sign in to ask a question")
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		title := r.FormValue("title")
		body := r.FormValue("body")
		if title == "" || body == "" {
			redirectWithError(w, r, RouteQnANew, "Title and question are required")
			return
		}

		question := &content.Question{
			ID:         uuid.NewString(),
			AuthorID:   user.ID,
			AuthorName: user.Metadata["full_name"],
			Title:      title,
			Body:       body,
			Private:    r.FormValue("private") == "on",
			CreatedAt:  time.Now(),
		}
		if err := client.Questions.Upsert(r.Context(), question); err != nil {
			log.Err(err).Msg("Failed to store question")
			redirectWithError(w, r, RouteQnANew, "Failed to submit question")
			return
		}

		redirectSuccess(w, r, RouteQnA)
	}
}

// ReviewsHandler lists approved reviews
func (s *Server) ReviewsHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("reviews.html")
	if err != nil {
		panic("Failed to parse reviews template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		reviews, err := client.Reviews.List(r.Context(), content.ReviewListOptions{
			Offset:       pageOffset(r),
			Limit:        pageSize,
			ApprovedOnly: true,
		})
		if err != nil {
			log.Err(err).Msg("Failed to list reviews")
			http.Error(w, "Failed to load reviews", http.StatusInternalServerError)
			return
		}

		data := s.pageData(r)
		data.Reviews = reviews
		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// ReviewSubmitHandler stores a new review pending approval
func (s *Server) ReviewSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := s.backend.Get()
		if client == nil {
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		user := s.currentUser(r)
		if user == nil {
			redirectWithError(w, r, RouteLogin, "Sign in to leave a review")
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		rating, _ := strconv.Atoi(r.FormValue("rating"))
		review := &content.Review{
			ID:         uuid.NewString(),
			AuthorID:   user.ID,
			AuthorName: user.Metadata["full_name"],
			Rating:     rating,
			Body:       r.FormValue("body"),
			CreatedAt:  time.Now(),
		}
		if err := review.Validate(); err != nil {
			redirectWithError(w, r, RouteReviews, err.Error())
			return
		}

		if err := client.Reviews.Upsert(r.Context(), review); err != nil {
			log.Err(err).Msg("Failed to store review")
			redirectWithError(w, r, RouteReviews, "Failed to submit review")
			return
		}

		redirectSuccess(w, r, RouteReviews)
	}
}
