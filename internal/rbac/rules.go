package rbac

// Default policy. Visitors walk the funnel; admins manage the catalog.
var RolePermissions = map[string][]string{
	"visitor": {
		"catalog:view",
		"assessment:start",
		"assessment:answer",
		"assessment:view-own",
		"payment:pay",
		"payment:view-own",
		"analysis:view-own",
		"report:export-own",
	},
	"admin": {
		"*", // everything
	},
}
