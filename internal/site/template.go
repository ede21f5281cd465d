package site

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.HeadTitle}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
<meta property="og:type" content="article">
<meta property="og:site_name" content="{{.Site.Title}}">
<meta property="og:title" content="{{.Title}}">
{{- if .Description}}
<meta property="og:description" content="{{.Description}}">
{{- end}}
{{- if .Canonical}}
<meta property="og:url" content="{{.Canonical}}">
<link rel="canonical" href="{{.Canonical}}">
{{- end}}
{{- if .Site.Logo}}
<meta property="og:image" content="{{.Site.Logo}}">
{{- end}}
{{- if .NotFound}}
<meta name="robots" content="noindex">
{{- end}}
<script type="application/ld+json">{{.JSONLD}}</script>
<style>
body{margin:0;font-family:system-ui,sans-serif;line-height:1.6;color:#1f2328}
.layout{display:grid;grid-template-columns:16rem minmax(0,1fr) 14rem;gap:2rem;max-width:90rem;margin:0 auto;padding:1.5rem}
.layout.full{grid-template-columns:16rem minmax(0,1fr)}
nav.sidebar a{display:block;padding:.15rem 0;color:inherit;text-decoration:none}
nav.sidebar a.active{font-weight:600}
nav.sidebar .icon{width:1rem;height:1rem;vertical-align:-2px;margin-right:.35rem}
.image-zoom img{max-width:100%;cursor:zoom-in}
.image-zoom.zoomed img{cursor:zoom-out;transform:scale(1.6)}
figure.code-block{margin:1rem 0}
figure.code-block pre{padding:1rem;overflow-x:auto;border-radius:.5rem;background:#f6f8fa}
aside.toc a{display:block;color:inherit;font-size:.9rem}
.feedback button{margin-right:.5rem}
</style>
</head>
<body>
<div class="layout{{if .Full}} full{{end}}">
<nav class="sidebar" aria-label="Documentation">
<a href="{{.Site.BasePath}}"><strong>{{.Site.Title}}</strong></a>
{{- range .Nav}}
<a href="{{.URL}}" style="padding-left:{{.Depth}}rem"{{if .Active}} class="active" aria-current="page"{{end}}>{{with .Icon}}{{.SVG}}{{end}}{{.Title}}</a>
{{- end}}
</nav>
<main>
<article>
{{- if .NotFound}}
<h1>Page not found</h1>
<p>No document exists at <code>{{.Path}}</code>.</p>
{{- else}}
<header class="page-header">{{with .Icon}}{{.SVG}}{{end}}<h1 class="page-title">{{.Title}}</h1>{{if .Description}}<p class="page-description">{{.Description}}</p>{{end}}</header>
{{.Body}}
{{- end}}
</article>
{{- if and .Site.FeedbackEndpoint (not .NotFound)}}
<section class="feedback" data-endpoint="{{.Site.FeedbackEndpoint}}" data-url="{{.Path}}">
<p>Was this page helpful?</p>
<button type="button" data-opinion="good">Yes</button><button type="button" data-opinion="bad">No</button>
<textarea name="message" rows="2" placeholder="Anything we should improve?"></textarea>
</section>
<script>
(function(){
  var box=document.querySelector('.feedback');if(!box)return;
  box.addEventListener('click',function(e){
    var op=e.target.getAttribute('data-opinion');if(!op)return;
    fetch(box.dataset.endpoint,{method:'POST',headers:{'Content-Type':'application/json'},
      body:JSON.stringify({url:box.dataset.url,opinion:op,message:box.querySelector('textarea').value})});
    box.innerHTML='<p>Thanks for the feedback!</p>';
  });
})();
</script>
{{- end}}
</main>
{{- if and (not .Full) .TOC}}
<aside class="toc" aria-label="On this page">
<p>On this page</p>
{{- range .TOC}}
<a href="{{.Anchor}}" style="padding-left:{{.Depth}}ch">{{.Title}}</a>
{{- end}}
</aside>
{{- end}}
</div>
<script>
document.querySelectorAll('[data-zoomable]').forEach(function(el){
  el.addEventListener('click',function(){el.classList.toggle('zoomed')});
});
</script>
</body>
</html>
`
