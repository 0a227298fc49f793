package signature

const topicsGuidelines = `Read the scraped news article in source_text and list exactly topic_count distinct topics it covers.
Write every topic in the language given by language and start each one with a capital letter.
Stay factual and neutral. Return only the topics: no numbering, no bullet characters, no introduction.`

const headlineGuidelines = `You write headlines for a news portal. From source_text, focused on selected_topic, write exactly headline_count headlines in the language given by language.

Hard rules:
- Every headline is between 70 and 110 characters long, spaces included.
- Never number the headlines and never use bullet characters.
- Never add introductory text such as "Here are the headlines".
- Never split a headline over several lines.

Style:
- Interpret the numbers instead of quoting them; prefer narration over statistics.
- Surprise or confront the reader and make clear why the story matters to them.
- Stress the impact on people. Use emotion or a question where it fits, but do not overuse questions.
- Be specific and concrete ("Hotels and inns see more visitors" instead of "Tourism rises").
- Prefer plain words, short sentences and general time references ("end of the year") unless a date is essential.
- Keep politics out where it does not belong. Positive or negative sentiment beats none.`

const perexGuidelines = `Write a perex (teaser paragraph) for the news article in source_text, focused on selected_topic and complementing current_headline.

Hard rules:
- The perex is between 140 and 160 characters long, spaces included.
- Write in the language given by language. No bullet characters.
- Do not repeat the headline.

Style:
- The first sentence is short and intriguing so it survives truncation.
- Cover one or two points at most. Avoid jargon and vague political phrasing.
- Prefer concrete numbers over percentages and explain the real-world impact.
- End with an open question that makes the reader want to continue.`

const engagingTextGuidelines = `Write a short hook that makes the reader open the article, based on source_text, selected_topic and current_headline.

Hard rules:
- At most 240 characters, spaces included.
- It relates to and complements the headline but is not a sentence of the article itself.
- Write in the language given by language. No bullet characters.`

const bodyGuidelines = `Write the news article for selected_topic under current_headline, using everything relevant from source_text.
Answer who, what, where, when, how much and above all why and how.

Hard rules:
- Use only numbers that appear in the sources. Never invent or estimate figures.
- Stick to facts: no commentary, no opinions, no exaggeration, no tabloid tone.
- Quote people when the source quotes them, with attribution.
- Split the article into at least 3 paragraphs separated by a single newline character. Use no other separators.
- Do not number, underline or title the paragraphs and do not add a title for the article.
- No bullet characters. Write in the language given by language.`

const tagsGuidelines = `Write exactly tag_count tags that help readers find the article, using source_text, selected_topic, current_headline and current_article.

Hard rules:
- Every tag starts with '#' and is written in CAPITAL LETTERS.
- Separate words inside a tag with spaces, never underscores.
- Keep the diacritics and punctuation of the language given by language.
- No bullet or formatting characters.`

const graphGuidelines = `Decide whether the numbers in source_text support one interpretable chart. If not, set gen_graph to false and leave the data empty.

When a chart is possible, set gen_graph to true and choose graph_type from: pie, line, bar, histogram, scatter.
- pie: parts of a whole, ideally fewer than 6 categories. No axis labels.
- line: a trend over ordered time points.
- bar: discrete categories compared with each other.
- histogram: distribution of raw numeric values. Provide values only, no labels.
- scatter: relationship between two numeric variables. Provide x_vals and y_vals.
Every other type uses labels and values.

Data rules:
- Take numbers only from the sources. Order time-like labels chronologically.
- One chart shows one concept in one unit. Never mix metrics (for example deficit and debt) and never mix units (for example percent and euros).
- Write title and axis labels in the language given by language.
- A missing value is null as its own list element, for example [24, 25, null, 27].
- If the data does not fit the chosen type, set gen_graph to false.`

const regenerateInstruction = `Previous output is listed in prior_output. Do not repeat it and do not write anything close to a paraphrase of it.`

const augmentedInstruction = `research_article contains an additional researched article. Treat source_text as the primary source and use research_article only to enrich it. When they disagree, source_text wins.`
