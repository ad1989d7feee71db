package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteBlog        = "/blog"
	RouteBlogPost    = "/blog/{slug}"
	RouteNotices     = "/notices"
	RouteNoticeByID  = "/notices/{id}"
	RouteQnA         = "/qna"
	RouteQnANew      = "/qna/new"
	RouteQnAByID     = "/qna/{id}"
	RouteReviews     = "/reviews"
	RouteReviewsNew  = "/reviews/new"

	// Auth Routes
	RouteLogin         = "/login"
	RouteSignup        = "/signup"
	RouteAuthLogin     = "/auth/login"
	RouteAuthSignup    = "/auth/signup"
	RouteAuthLogout    = "/auth/logout"
	RouteOAuthBegin    = "/auth/oauth"
	RouteOAuthCallback = "/auth/callback"

	// API Routes
	RouteAPIValidatePassword = "/api/validate-password"

	// Admin Routes
	RouteAdminDashboard     = "/admin/dashboard"
	RouteAdminPosts         = "/admin/posts"
	RouteAdminPostNew       = "/admin/posts/new"
	RouteAdminPostEdit      = "/admin/posts/{id}"
	RouteAdminPostPublish   = "/admin/posts/{id}/publish"
	RouteAdminPostDelete    = "/admin/posts/{id}/delete"
	RouteAdminNotices       = "/admin/notices"
	RouteAdminNoticeNew     = "/admin/notices/new"
	RouteAdminNoticeEdit    = "/admin/notices/{id}"
	RouteAdminNoticeDelete  = "/admin/notices/{id}/delete"
	RouteAdminQuestions     = "/admin/questions"
	RouteAdminQuestionReply = "/admin/questions/{id}/answer"
	RouteAdminReviews       = "/admin/reviews"
	RouteAdminReviewApprove = "/admin/reviews/{id}/approve"
	RouteAdminReviewDelete  = "/admin/reviews/{id}/delete"
	RouteAdminUsers         = "/admin/users"
	RouteAdminUserRole      = "/admin/users/{id}/role"

	// Static Asset Routes (patterns)
	RouteStaticCSS    = "/css/{file}"
	RouteStaticJS     = "/js/{file}"
	RouteStaticImages = "/images/{file}"
)
