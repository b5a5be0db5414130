package client

import "strconv"

// Backend paths, relative to the configured base URL.
const (
	pathLogin    = "/api/auth/login"
	pathRegister = "/api/auth/register"
	pathVerify   = "/api/auth/verify"
	pathRefresh  = "/api/auth/refresh"

	pathCompanyInfo = "/api/company-info"

	pathObjectives = "/api/catalog/objectives"
	pathStyles     = "/api/catalog/styles"

	pathGenerate   = "/api/generate-content"
	pathRegenerate = "/api/regenerate-content"

	pathPosts = "/api/posts/"

	pathTemplates      = "/api/templates"
	pathTemplateUpload = "/api/templates/"
)

func postPath(id int64) string {
	return pathPosts + strconv.FormatInt(id, 10)
}

func templatePath(id int64) string {
	return pathTemplates + "/" + strconv.FormatInt(id, 10)
}
