package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// Public pages
	s.RegisterRouteHandler("GET /", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteBlog, ChainMiddleware(s.BlogListHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteBlogPost, ChainMiddleware(s.BlogPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteNotices, ChainMiddleware(s.NoticesHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteNoticeByID, ChainMiddleware(s.NoticeHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteQnA, ChainMiddleware(s.QnAListHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteQnANew, ChainMiddleware(s.QnANewHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteQnA, ChainMiddleware(s.QnASubmitHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteQnAByID, ChainMiddleware(s.QnADetailHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteReviews, ChainMiddleware(s.ReviewsHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteReviewsNew, ChainMiddleware(s.ReviewSubmitHandler(), s.HTMLMiddleWare()...))

	// LOGIN / SIGNUP
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("GET "+RouteSignup, ChainMiddleware(s.SignupPageUIHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("POST "+RouteAuthSignup, ChainMiddleware(s.SignupSubmissionHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("GET "+RouteOAuthBegin, ChainMiddleware(s.OAuthBeginHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteFunc("POST "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.LoggingMiddleware, s.RecoverMiddleware)) // For form_post response mode

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))

	// Admin routes (session enforced at the edge, role in the guard)
	s.RegisterRouteHandler("GET /admin", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteAdminDashboard, http.StatusSeeOther)
	}, s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminPosts, ChainMiddleware(s.AdminPostsListHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminPostNew, ChainMiddleware(s.AdminPostFormHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminPostEdit, ChainMiddleware(s.AdminPostFormHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminPosts, ChainMiddleware(s.AdminPostSaveHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminPostEdit, ChainMiddleware(s.AdminPostSaveHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminPostPublish, ChainMiddleware(s.AdminPostPublishHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminPostDelete, ChainMiddleware(s.AdminPostDeleteHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminNotices, ChainMiddleware(s.AdminNoticesListHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminNoticeNew, ChainMiddleware(s.AdminNoticeFormHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminNoticeEdit, ChainMiddleware(s.AdminNoticeFormHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminNotices, ChainMiddleware(s.AdminNoticeSaveHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminNoticeEdit, ChainMiddleware(s.AdminNoticeSaveHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminNoticeDelete, ChainMiddleware(s.AdminNoticeDeleteHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminQuestions, ChainMiddleware(s.AdminQuestionsListHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminQuestionReply, ChainMiddleware(s.AdminQuestionAnswerHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminReviews, ChainMiddleware(s.AdminReviewsListHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminReviewApprove, ChainMiddleware(s.AdminReviewApproveHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminReviewDelete, ChainMiddleware(s.AdminReviewDeleteHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersListHandler(), s.AdminMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminUserRole, ChainMiddleware(s.AdminUserRoleHandler(), s.AdminMiddleWare()...))

	// Static assets
	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteStaticImages, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleWare()...))
	s.RegisterRouteHandler("GET /favicon.ico", ChainMiddleware(s.serveFileHandler(), s.StaticMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		r.URL.Path = "/" + filePath
		s.fileServer.ServeHTTP(w, r)
	}
}
