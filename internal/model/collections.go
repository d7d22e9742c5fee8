package model

// Firestore collection names. Kept in one place so the bulk reset operation
// and the repositories can never drift apart.
const (
	ColUsers             = "users"
	ColSites             = "sites"
	ColStalls            = "stalls"
	ColStockItems        = "stockItems"
	ColStockMovementLogs = "stockMovementLogs"
	ColSalesTransactions = "salesTransactions"
	ColFoodSales         = "foodSaleTransactions"
	ColFoodExpenses      = "foodItemExpenses"
	ColStaffDetails      = "staffDetails"
	ColStaffActivityLogs = "staffActivityLogs"
	ColOAuthTokens       = "userGoogleOAuthTokens"
)

// ResettableCollections is the fixed list wiped by the admin reset operation.
// users and userGoogleOAuthTokens are deliberately excluded so the admin who
// triggered the reset can still sign in afterwards.
var ResettableCollections = []string{
	ColSites,
	ColStalls,
	ColStockItems,
	ColStockMovementLogs,
	ColSalesTransactions,
	ColFoodSales,
	ColFoodExpenses,
	ColStaffDetails,
	ColStaffActivityLogs,
}
