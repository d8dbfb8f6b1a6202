// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import "inkwell/internal/component"

// Component templates execute against a view (see view in engine.go) and
// must depend on nothing but that view.
var componentTemplates = map[component.Kind]string{
	component.KindNavbar: `<nav class="navbar navbar--{{.Data.Layout}}">
{{- if eq .Data.TitleType "image"}}<a class="navbar__brand" href="./"><img src="{{.Data.LogoURL}}" alt="{{.Data.Title}}"></a>
{{- else}}<a class="navbar__brand" href="./">{{.Data.Title}}</a>{{end}}
<ul class="navbar__links">
{{- range .Data.Links}}
<li class="navbar__item">
{{- if .DropdownItems}}<details class="navbar__dropdown"><summary>{{.Text}}</summary><ul>
{{- range .DropdownItems}}<li><a class="{{linkClass .Variant}}" href="{{.Href}}"{{if .Target}} target="{{.Target}}"{{end}}>{{.Text}}</a></li>{{end -}}
</ul></details>
{{- else}}<a class="{{linkClass .Variant}}" href="{{.Href}}"{{if .Target}} target="{{.Target}}"{{end}}>{{.Text}}</a>{{end -}}
</li>
{{- end}}
</ul>
</nav>`,

	component.KindHero: `<header class="hero hero--{{.Data.Layout}} hero--{{.Data.Align}}" style="min-height: {{.Data.Height}}px">
{{- if .Data.ImageURL}}<img class="hero__image" src="{{.Data.ImageURL}}" alt="">{{end}}
<div class="hero__body">
<h1 class="hero__title">{{.Data.Title}}</h1>
{{- if .Data.Subtitle}}<p class="hero__subtitle">{{.Data.Subtitle}}</p>{{end}}
{{- if .Data.Buttons}}<div class="hero__actions">
{{- range .Data.Buttons}}<a class="btn btn--{{.Variant}}" href="{{.Href}}">{{.Text}}</a>{{end -}}
</div>{{end}}
</div>
</header>`,

	component.KindGridStatic: gridTemplate,

	component.KindForm: `<form class="form" method="post" action="/forms/{{.ID}}">
{{- if .Data.Title}}<h2 class="form__title">{{.Data.Title}}</h2>{{end}}
{{- if .Data.Description}}<p class="form__description">{{.Data.Description}}</p>{{end}}
{{- range .Data.Fields}}
<label class="form__field form__field--{{.Type}}"><span>{{.Label}}</span>
{{- if eq .Type "textarea"}}<textarea name="{{.Name}}" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}></textarea>
{{- else if eq .Type "select"}}<select name="{{.Name}}"{{if .Required}} required{{end}}>{{range .Options}}<option>{{.}}</option>{{end}}</select>
{{- else}}<input type="{{.Type}}" name="{{.Name}}" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}>{{end}}
</label>
{{- end}}
<button type="submit" class="btn btn--primary">{{.Data.SubmitText}}</button>
</form>`,

	component.KindCarousel: `<div class="carousel" data-interval="{{.Data.Interval}}" data-autoplay="{{.Data.AutoPlay}}">
<ol class="carousel__track">
{{- range $i, $s := .Data.Slides}}
<li class="carousel__slide" data-index="{{$i}}">
{{- if $s.Href}}<a href="{{$s.Href}}"><img src="{{$s.ImageURL}}" alt="{{$s.Caption}}"></a>{{else}}<img src="{{$s.ImageURL}}" alt="{{$s.Caption}}">{{end}}
{{- if $s.Caption}}<p class="carousel__caption">{{$s.Caption}}</p>{{end -}}
</li>
{{- end}}
</ol>
{{- if .Data.ShowIndicators}}<div class="carousel__indicators">{{range $i, $s := .Data.Slides}}<span data-index="{{$i}}"></span>{{end}}</div>{{end}}
</div>`,

	component.KindFooter: `<footer class="footer footer--{{.Data.Layout}}">
{{- if .Data.Columns}}<div class="footer__columns">
{{- range .Data.Columns}}<div class="footer__column">
{{- if .Title}}<h3>{{.Title}}</h3>{{end}}
<ul>{{range .Links}}<li><a href="{{.Href}}">{{.Text}}</a></li>{{end}}</ul>
</div>{{end -}}
</div>{{end}}
{{- if .Data.Copyright}}<p class="footer__copyright">{{.Data.Copyright}}</p>{{end}}
</footer>`,
}

// gridTemplate is shared by the static and dynamic grid paths; both build a
// gridView.
const gridTemplate = `<div class="grid grid--{{.Data.Template}}" data-dynamic="{{.Data.Dynamic}}">
{{- if .Data.Title}}<h2 class="grid__title">{{.Data.Title}}</h2>{{end}}
<div class="grid__items" style="grid-template-columns: repeat({{.Data.Columns}}, minmax(0, 1fr))">
{{- range .Data.Items}}
<article class="grid__item">
{{- if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Title}}">{{end}}
<h3>{{if .Href}}<a href="{{.Href}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</h3>
{{- if .Description}}<p>{{.Description | trunc 280}}</p>{{end -}}
</article>
{{- else}}
<p class="grid__empty">Nothing here yet.</p>
{{- end}}
</div>
</div>`

// fallbackTemplate renders a payload that could not be matched to a
// renderer as a JSON dump.
const fallbackTemplate = `<pre class="component-fallback" data-type="{{.Type}}">{{.JSON}}</pre>`

// sectionTemplate wraps every fragment so each rendered block is keyed by
// its component id.
const sectionTemplate = `<section id="c-{{.ID}}" data-component-id="{{.ID}}" data-component-type="{{.Type}}">{{.Body}}</section>`

// documentTemplate is the public page shell. Blog-level presentation
// settings are applied once to <body>.
const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .BaseURL}}
<base href="{{.BaseURL}}">{{end}}
<title>{{if .Title}}{{.Title}} · {{end}}{{.BlogName}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">{{end}}
</head>
<body style="background-color: {{.Background}}; font-family: {{.Font}}"{{if .Preview}} data-preview="true"{{end}}>
<main class="page" data-page="{{.PageSlug}}">
{{- range .Sections}}
{{.}}
{{- end}}
</main>
</body>
</html>`

// postTemplate renders a single blog post inside the document shell.
const postTemplate = `<article class="post">
<h1 class="post__title">{{.Title}}</h1>
{{- if .PublishedAt}}<time class="post__date">{{.PublishedAt}}</time>{{end}}
{{- if .CoverImageURL}}<img class="post__cover" src="{{.CoverImageURL}}" alt="">{{end}}
<div class="post__body">{{.Body}}</div>
</article>`
