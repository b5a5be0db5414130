package preview

import "html/template"

var pageTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="preview-version" content="{{.Version}}">
<title>Post preview</title>
<style>
body { background: #fafafa; font-family: -apple-system, Helvetica, Arial, sans-serif; }
.card { max-width: 470px; margin: 2rem auto; background: #fff; border: 1px solid #dbdbdb; border-radius: 8px; }
.card header { padding: 12px 16px; font-weight: 600; }
.card img { width: 100%; display: block; }
.card .placeholder { aspect-ratio: 1; background: #efefef; }
.card .caption { padding: 8px 16px; font-size: 14px; }
.card .hashtags { padding: 0 16px 16px; color: #00376b; font-size: 14px; }
.empty { text-align: center; color: #8e8e8e; padding: 4rem 1rem; }
</style>
</head>
<body>
{{if .Empty}}<p class="empty">Your post preview will appear here.</p>
{{else}}<article class="card" data-post-id="{{.PostID}}">
<header>@{{.Account}}</header>
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="Generated image">{{else}}<div class="placeholder"></div>{{end}}
<div class="caption"><strong>{{.Account}}</strong> {{.Caption}}</div>
{{if .Hashtags}}<div class="hashtags">{{range .Hashtags}}<span>{{.}}</span> {{end}}</div>{{end}}
</article>
{{end}}</body>
</html>
`))
