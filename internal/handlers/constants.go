package handlers

const (
	apiBasePath = "/api"
	paramID     = "id"

	budgetsBasePath     = "/budgets"
	expensesBasePath    = "/expenses"
	creditCardsBasePath = "/credit-cards"
	incomeBasePath      = "/income"
	goalsBasePath       = "/goals"
)

const (
	MsgAccessTokenRequired = "Access token required"
	MsgInvalidToken        = "Invalid or expired token"
	MsgMissingSignup       = "Please provide username, email, and password"
	MsgMissingLogin        = "Please provide email and password"
	MsgMissingEmail        = "Please provide your email address"
	MsgAccountConflict     = "Unable to create an account!"
	MsgUsernameTaken       = "Username already taken"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgResetLinkSent       = "If an account exists with this email, you will receive a password reset link."
	MsgEmailFailed         = "Failed to send email. Please try again."
	MsgInvalidResetToken   = "Invalid or expired reset token"
	MsgPasswordReset       = "Password has been reset successfully"
	MsgUserNotFound        = "User not found"
	MsgLoggedOut           = "Logged out successfully"
	MsgInvalidAmount       = "Amount must be greater than 0"
	MsgInsufficientFunds   = "Withdrawal amount exceeds current savings"
)
